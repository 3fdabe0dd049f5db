package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	sourcemap "github.com/LongJohnCoder/source-map"
	"github.com/LongJohnCoder/source-map/internal/errorList"
)

// maxReportedErrors limits the errors validate reports.
const maxReportedErrors = 10

func newValidateCmd() *cobra.Command {
	var (
		failFast        bool
		requireContents bool
	)
	cmd := &cobra.Command{
		Use:   "validate <map>...",
		Short: "Check source maps for errors",
		Long: `Check source maps for errors.

Every map is fully decoded, including its mappings and its scopes, which are
otherwise only decoded when first queried. Maps are checked concurrently.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			errs := make([]error, len(args))
			checked := make([]bool, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			for i, path := range args {
				i, path := i, path
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					errs[i] = validateMap(path, requireContents)
					checked[i] = true
					if failFast {
						return errs[i]
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				log.Debugf("Validation stopped early: %v", err)
			}

			out := cmd.OutOrStdout()
			var list errorList.ErrorList
			for i, path := range args {
				switch {
				case errs[i] != nil:
					list = list.AppendDistinct(errs[i])
				case checked[i]:
					fmt.Fprintf(out, "%s: ok\n", path)
				}
			}
			list = list.Trim(maxReportedErrors)
			if len(list) > 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), list.Details())
			}
			return list.ErrOrNil()
		},
	}
	flags := cmd.Flags()
	flags.BoolVar(&failFast, "fail-fast", false, "Stop at the first invalid map")
	flags.BoolVar(&requireContents, "require-contents", false, "Fail if a map doesn't embed the content of all its sources")
	return cmd
}

func validateMap(path string, requireContents bool) error {
	c, err := readConsumer(path)
	if err != nil {
		return err
	}
	count := 0
	if err := c.EachMapping(sourcemap.GeneratedOrder, func(sourcemap.Mapping) { count++ }); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if _, err := c.GlobalScope(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if requireContents && !c.HasContentsOfAllSources() {
		return fmt.Errorf("%s: %w: some sources have no content", path, sourcemap.ErrSourceNotFound)
	}
	log.Debugf("%s: %d mapping(s), %d source(s).", path, count, len(c.Sources()))
	return nil
}
