package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	sourcemap "github.com/LongJohnCoder/source-map"
)

// biasValue is a pflag.Value selecting the lookup bias.
type biasValue sourcemap.Bias

var _ pflag.Value = (*biasValue)(nil)

func (b *biasValue) String() string {
	if sourcemap.Bias(*b) == sourcemap.LeastUpperBound {
		return "lub"
	}
	return "glb"
}

func (b *biasValue) Set(s string) error {
	switch s {
	case "glb":
		*b = biasValue(sourcemap.GreatestLowerBound)
	case "lub":
		*b = biasValue(sourcemap.LeastUpperBound)
	default:
		return fmt.Errorf("unknown bias %q, want glb or lub", s)
	}
	return nil
}

func (b *biasValue) Type() string { return "bias" }

// orderValue is a pflag.Value selecting the mapping iteration order.
type orderValue sourcemap.Order

var _ pflag.Value = (*orderValue)(nil)

func (o *orderValue) String() string {
	if sourcemap.Order(*o) == sourcemap.OriginalOrder {
		return "original"
	}
	return "generated"
}

func (o *orderValue) Set(s string) error {
	switch s {
	case "generated":
		*o = orderValue(sourcemap.GeneratedOrder)
	case "original":
		*o = orderValue(sourcemap.OriginalOrder)
	default:
		return fmt.Errorf("unknown order %q, want generated or original", s)
	}
	return nil
}

func (o *orderValue) Type() string { return "order" }

// parsePosition parses "line:column". If the column is omitted, it is
// defaultColumn.
func parsePosition(s string, defaultColumn int) (sourcemap.Position, error) {
	lineStr, colStr, hasCol := strings.Cut(s, ":")
	line, err := strconv.Atoi(lineStr)
	if err != nil {
		return sourcemap.Position{}, fmt.Errorf("invalid position %q: bad line: %w", s, err)
	}
	column := defaultColumn
	if hasCol {
		if column, err = strconv.Atoi(colStr); err != nil {
			return sourcemap.Position{}, fmt.Errorf("invalid position %q: bad column: %w", s, err)
		}
	}
	return sourcemap.Position{Line: line, Column: column}, nil
}

func readConsumer(path string) (sourcemap.Consumer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := sourcemap.NewConsumer(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// writeOutput writes data to path, or to the command output if path is empty
// or "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
