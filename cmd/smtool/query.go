package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	sourcemap "github.com/LongJohnCoder/source-map"
)

func newLookupCmd() *cobra.Command {
	bias := biasValue(sourcemap.GreatestLowerBound)
	cmd := &cobra.Command{
		Use:   "lookup <map> <line:column>...",
		Short: "Print the original positions of generated positions",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := readConsumer(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, arg := range args[1:] {
				pos, err := parsePosition(arg, 0)
				if err != nil {
					return err
				}
				orig, err := c.OriginalPositionFor(pos.Line, pos.Column, sourcemap.Bias(bias))
				if err != nil {
					return fmt.Errorf("lookup %s: %w", pos, err)
				}
				if !orig.IsValid() {
					fmt.Fprintf(out, "%s -> unmapped\n", pos)
					continue
				}
				fmt.Fprintf(out, "%s -> %s\n", pos, formatOriginal(orig.Source, orig.Line, orig.Column, orig.Name))
			}
			return nil
		},
	}
	cmd.Flags().Var(&bias, "bias", "Mapping to pick when there is no exact match: glb or lub")
	return cmd
}

func newReverseCmd() *cobra.Command {
	var (
		bias  = biasValue(sourcemap.GreatestLowerBound)
		all   bool
		spans bool
	)
	cmd := &cobra.Command{
		Use:   "reverse <map> <source> <line[:column]>",
		Short: "Print the generated positions of an original position",
		Long: `Print the generated positions of an original position.

With --all, every generated position mapped to the original line and column is
printed. Omitting the column matches the whole line.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := readConsumer(args[0])
			if err != nil {
				return err
			}
			defaultColumn := 0
			if all {
				defaultColumn = sourcemap.AnyColumn
			}
			pos, err := parsePosition(args[2], defaultColumn)
			if err != nil {
				return err
			}
			if spans {
				if err := c.ComputeColumnSpans(); err != nil {
					return err
				}
			}

			var positions []sourcemap.GeneratedPosition
			if all {
				positions, err = c.AllGeneratedPositionsFor(args[1], pos.Line, pos.Column)
			} else {
				var gen sourcemap.GeneratedPosition
				gen, err = c.GeneratedPositionFor(args[1], pos.Line, pos.Column, sourcemap.Bias(bias))
				if gen.IsValid() {
					positions = append(positions, gen)
				}
			}
			if err != nil {
				return fmt.Errorf("reverse lookup %s:%s: %w", args[1], pos, err)
			}

			out := cmd.OutOrStdout()
			if len(positions) == 0 {
				fmt.Fprintln(out, "unmapped")
			}
			for _, gen := range positions {
				fmt.Fprintln(out, formatGenerated(gen))
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.Var(&bias, "bias", "Mapping to pick when there is no exact match: glb or lub")
	flags.BoolVarP(&all, "all", "a", false, "Print every matching generated position")
	flags.BoolVar(&spans, "spans", false, "Print the last column of each generated position")
	return cmd
}

func newDumpCmd() *cobra.Command {
	order := orderValue(sourcemap.GeneratedOrder)
	cmd := &cobra.Command{
		Use:   "dump <map>",
		Short: "Print every mapping of a source map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := readConsumer(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if c.File() != "" {
				fmt.Fprintf(out, "file: %s\n", c.File())
			}
			for _, source := range c.Sources() {
				content := "no content"
				if _, ok := c.SourceContent(source); ok {
					content = "with content"
				}
				fmt.Fprintf(out, "source: %s (%s)\n", source, content)
			}
			return c.EachMapping(sourcemap.Order(order), func(m sourcemap.Mapping) {
				fmt.Fprintln(out, formatMapping(m))
			})
		},
	}
	cmd.Flags().Var(&order, "order", "Iteration order: generated or original")
	return cmd
}

func newScopesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scopes <map> [line:column]",
		Short: "Print the scope tree of a source map",
		Long: `Print the scope tree of a source map, decoded from its x_env field.

If a generated position is given, only the innermost scope containing it is
printed.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := readConsumer(args[0])
			if err != nil {
				return err
			}
			var s *sourcemap.Scope
			if len(args) == 2 {
				pos, err := parsePosition(args[1], 0)
				if err != nil {
					return err
				}
				if s, err = c.ScopeAt(pos.Line, pos.Column); err != nil {
					return err
				}
			} else if s, err = c.GlobalScope(); err != nil {
				return err
			}
			return writeScope(cmd.OutOrStdout(), s)
		},
	}
	return cmd
}

func writeScope(w io.Writer, s *sourcemap.Scope) error {
	if s == nil {
		_, err := fmt.Fprintln(w, "no scope")
		return err
	}
	_, err := s.WriteTo(w)
	return err
}

func formatOriginal(source string, line, column int, name string) string {
	s := fmt.Sprintf("%s:%d:%d", source, line, column)
	if name != "" {
		s += " " + name
	}
	return s
}

func formatGenerated(gen sourcemap.GeneratedPosition) string {
	switch gen.LastColumn {
	case sourcemap.NoColumn:
		return fmt.Sprintf("%d:%d", gen.Line, gen.Column)
	case sourcemap.Unbounded:
		return fmt.Sprintf("%d:%d-", gen.Line, gen.Column)
	default:
		return fmt.Sprintf("%d:%d-%d", gen.Line, gen.Column, gen.LastColumn)
	}
}

func formatMapping(m sourcemap.Mapping) string {
	if m.Source == "" {
		return fmt.Sprintf("%d:%d", m.GeneratedLine, m.GeneratedColumn)
	}
	return fmt.Sprintf("%d:%d -> %s", m.GeneratedLine, m.GeneratedColumn, formatOriginal(m.Source, m.OriginalLine, m.OriginalColumn, m.Name))
}
