// Package mapping implements the mapping records of a source map, the two
// orders they are queried in, and the "mappings" segment codec.
package mapping

import (
	"fmt"
	"math"
)

const (
	// None marks an absent source or name index.
	None = -1
	// NoColumn marks a last generated column which hasn't been computed.
	NoColumn = -1
	// Unbounded is the last generated column of the final mapping on a line,
	// which spans to the end of that line.
	Unbounded = math.MaxInt
)

// Mapping is a single correspondence between a generated position and an
// optional original position.
//
// Lines are 1-based and columns are 0-based. Source and Name are indices into
// the owning map's source and name tables, or None. When Source is None the
// original line and column carry no meaning.
type Mapping struct {
	GeneratedLine       int
	GeneratedColumn     int
	LastGeneratedColumn int

	Source         int
	OriginalLine   int
	OriginalColumn int
	Name           int
}

// New returns a mapping for the generated position without original position
// information.
func New(line, column int) *Mapping {
	return &Mapping{
		GeneratedLine:       line,
		GeneratedColumn:     column,
		LastGeneratedColumn: NoColumn,
		Source:              None,
		Name:                None,
	}
}

// HasOriginal reports whether the mapping points into an original source.
func (m *Mapping) HasOriginal() bool {
	return m.Source != None
}

// HasName reports whether the mapping carries an original identifier name.
func (m *Mapping) HasName() bool {
	return m.Source != None && m.Name != None
}

// Clone returns a copy of the mapping that doesn't share memory with m.
func (m *Mapping) Clone() *Mapping {
	c := *m
	return &c
}

func (m *Mapping) String() string {
	if !m.HasOriginal() {
		return fmt.Sprintf("%d:%d", m.GeneratedLine, m.GeneratedColumn)
	}
	if !m.HasName() {
		return fmt.Sprintf("%d:%d -> #%d:%d:%d", m.GeneratedLine, m.GeneratedColumn, m.Source, m.OriginalLine, m.OriginalColumn)
	}
	return fmt.Sprintf("%d:%d -> #%d:%d:%d (#%d)", m.GeneratedLine, m.GeneratedColumn, m.Source, m.OriginalLine, m.OriginalColumn, m.Name)
}

// Clone returns deep copies of all mappings in the slice.
func Clone(mappings []*Mapping) []*Mapping {
	out := make([]*Mapping, len(mappings))
	for i, m := range mappings {
		out[i] = m.Clone()
	}
	return out
}
