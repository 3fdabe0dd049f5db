package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	verbose  bool
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "smtool",
		Short: "Inspect, validate and rewrite version 3 source maps",
		Long: `smtool answers position queries against source maps, prints their mappings
and scopes, checks them for errors and produces new maps.

Generator defaults can be changed with the SOURCEMAP_EXPERIMENT environment
variable, e.g. SOURCEMAP_EXPERIMENT=abbrev.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setupLogging()
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging, same as --log-level=debug")
	flags.StringVar(&opts.logLevel, "log-level", log.WarnLevel.String(), "Log level: panic, fatal, error, warn, info, debug or trace")

	cmd.AddCommand(
		newLookupCmd(),
		newReverseCmd(),
		newDumpCmd(),
		newScopesCmd(),
		newValidateCmd(),
		newApplyCmd(),
		newStripCmd(),
		newNormalizeCmd(),
	)
	return cmd
}

func (o *rootOptions) setupLogging() error {
	level, err := log.ParseLevel(o.logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	if o.verbose {
		level = log.DebugLevel
	}
	log.SetLevel(level)
	return nil
}
