// Package sourcemap reads, queries and writes version 3 source maps,
// including the "x_env" extension describing the lexical scopes and bindings
// of the generated code.
//
// A Consumer answers queries about an existing map. Consumers are created
// with NewConsumer, which picks a BasicConsumer or an IndexedConsumer
// depending on whether the map is composed of sections. A Generator builds a
// new map incrementally.
//
// Neither consumers nor generators are safe for concurrent use.
package sourcemap

// Consumer is a parsed source map that can be queried.
//
// Query methods return an error when the map turns out to be malformed, which
// may only be detected on first use, or when the queried position is invalid.
// A position that simply isn't mapped is reported as a zero result.
type Consumer interface {
	// File is the name of the generated file the map is associated with.
	File() string
	// SourceRoot is prepended to every source path of the map.
	SourceRoot() string
	// Sources lists the original sources, with the source root applied.
	Sources() []string

	// OriginalPositionFor returns the original position of a generated
	// position.
	OriginalPositionFor(line, column int, bias Bias) (OriginalPosition, error)
	// GeneratedPositionFor returns the generated position of an original
	// position.
	GeneratedPositionFor(source string, line, column int, bias Bias) (GeneratedPosition, error)
	// AllGeneratedPositionsFor returns the generated positions of every
	// mapping for the original line and column. If column is AnyColumn, all
	// mappings of the line are returned. An unknown source yields no
	// positions and no error.
	AllGeneratedPositionsFor(source string, line, column int) ([]GeneratedPosition, error)
	// EachMapping calls f for every mapping of the map in the given order.
	EachMapping(order Order, f func(m Mapping)) error
	// ComputeColumnSpans sets the LastColumn of every generated position
	// returned afterwards.
	ComputeColumnSpans() error

	// SourceContentFor returns the embedded content of a source, failing with
	// ErrSourceNotFound if there is none.
	SourceContentFor(source string) (string, error)
	// SourceContent is like SourceContentFor, but reports a missing content
	// with false.
	SourceContent(source string) (string, bool)
	// HasContentsOfAllSources reports whether every source has embedded
	// content.
	HasContentsOfAllSources() bool

	// GlobalScope returns the root of the scope tree, or nil if the map
	// carries no environment.
	GlobalScope() (*Scope, error)
	// ScopeAt returns the innermost scope containing the generated position,
	// or nil if the map carries no environment.
	ScopeAt(line, column int) (*Scope, error)
}

// NewConsumer parses a JSON source map.
func NewConsumer(data []byte) (Consumer, error) {
	raw, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return NewConsumerFromRaw(raw)
}

// NewConsumerFromRaw creates a consumer for a decoded source map. The map
// must not be modified afterwards.
func NewConsumerFromRaw(raw *RawMap) (Consumer, error) {
	if raw.IsIndexed() {
		c, err := newIndexedConsumer(raw)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	c, err := newBasicConsumer(raw)
	if err != nil {
		return nil, err
	}
	return c, nil
}
