package main

import (
	"bytes"
	"fmt"
	"os"

	neelance "github.com/neelance/sourcemap"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sourcemap "github.com/LongJohnCoder/source-map"
	"github.com/LongJohnCoder/source-map/internal/experiments"
	"github.com/LongJohnCoder/source-map/internal/sourcemapx"
)

// generatorFlags are the options of the commands producing a new map.
type generatorFlags struct {
	file           string
	sourceRoot     string
	abbreviations  bool
	skipValidation bool
}

func (f *generatorFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.file, "file", "", "Name of the generated file recorded in the map")
	flags.StringVar(&f.sourceRoot, "source-root", "", "Source root recorded in the map")
	flags.BoolVar(&f.abbreviations, "abbrev", experiments.Env.Abbreviations, "Abbreviate the encoded scopes")
	flags.BoolVar(&f.skipValidation, "skip-validation", experiments.Env.SkipValidation, "Don't check mappings and scopes")
}

func (f *generatorFlags) options() sourcemap.GeneratorOptions {
	flags := experiments.Flags{Abbreviations: f.abbreviations, SkipValidation: f.skipValidation}
	return flags.GeneratorOptions(f.file, f.sourceRoot)
}

func marshalMap(g *sourcemap.Generator) ([]byte, error) {
	data, err := g.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func newApplyCmd() *cobra.Command {
	var (
		sourceFile    string
		sourceMapPath string
		output        string
	)
	cmd := &cobra.Command{
		Use:   "apply <map> <applied-map>",
		Short: "Rewrite the mappings of a map through another one",
		Long: `Rewrite the mappings of a map through another one.

Mappings of <map> into the source the applied map was generated for are
replaced with the original positions the applied map gives them. This composes
the maps of two consecutive build steps, e.g. a transpiler and a minifier.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := readConsumer(args[0])
			if err != nil {
				return err
			}
			applied, err := readConsumer(args[1])
			if err != nil {
				return err
			}
			g, err := sourcemap.NewGeneratorFromConsumer(c)
			if err != nil {
				return err
			}
			if err := g.ApplySourceMap(applied, sourceFile, sourceMapPath); err != nil {
				return err
			}
			data, err := marshalMap(g)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, data)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&sourceFile, "source", "", "Source the applied map is for, defaults to its file field")
	flags.StringVar(&sourceMapPath, "source-map-path", "", "Directory of the applied map, sources of which are relative to it")
	flags.StringVarP(&output, "output", "o", "", "Output path, stdout by default")
	return cmd
}

func newStripCmd() *cobra.Command {
	var (
		gen     generatorFlags
		output  string
		mapPath string
	)
	cmd := &cobra.Command{
		Use:   "strip <hinted-file>",
		Short: "Remove source map hints from generated code and write the map they describe",
		Long: `Remove source map hints from generated code and write the map they describe.

Code generators may embed hints into their output, marking the original
positions, scopes and bindings of the generated code. The code is written
without the hints to --output, and the source map to --map.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return fmt.Errorf("--output is required")
			}
			if mapPath == "" {
				mapPath = output + ".map"
			}
			hinted, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			code := &bytes.Buffer{}
			g := sourcemap.NewGenerator(gen.options())
			filter := &sourcemapx.Filter{Writer: code, Generator: g}
			// Hints must not be split across writes.
			if _, err := filter.Write(hinted); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if err := filter.Close(); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			data, err := marshalMap(g)
			if err != nil {
				return err
			}

			if err := os.WriteFile(output, code.Bytes(), 0o644); err != nil {
				return err
			}
			if err := os.WriteFile(mapPath, data, 0o644); err != nil {
				return err
			}
			log.Infof("Wrote %s and %s.", output, mapPath)
			return nil
		},
	}
	gen.register(cmd)
	flags := cmd.Flags()
	flags.StringVarP(&output, "output", "o", "", "Path of the generated code without hints")
	flags.StringVar(&mapPath, "map", "", "Path of the source map, defaults to <output>.map")
	return cmd
}

func newNormalizeCmd() *cobra.Command {
	var (
		gen    generatorFlags
		legacy bool
		output string
	)
	cmd := &cobra.Command{
		Use:   "normalize <map>",
		Short: "Re-encode a source map",
		Long: `Re-encode a source map, sorting and deduplicating its mappings, sources
and names.

The map is read leniently, which accepts maps other tools may reject. With
--legacy, the output drops the fields older consumers don't understand.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			m, err := neelance.ReadFrom(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			g, err := sourcemapx.Import(m, gen.options())
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			if !legacy {
				data, err := marshalMap(g)
				if err != nil {
					return err
				}
				return writeOutput(cmd, output, data)
			}

			c, err := sourcemap.NewConsumerFromGenerator(g)
			if err != nil {
				return err
			}
			exported, err := sourcemapx.Export(c)
			if err != nil {
				return err
			}
			buf := &bytes.Buffer{}
			if err := exported.WriteTo(buf); err != nil {
				return err
			}
			return writeOutput(cmd, output, buf.Bytes())
		},
	}
	gen.register(cmd)
	flags := cmd.Flags()
	flags.BoolVar(&legacy, "legacy", false, "Write only the fields of the original version 3 format")
	flags.StringVarP(&output, "output", "o", "", "Output path, stdout by default")
	return cmd
}
