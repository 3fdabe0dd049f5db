package sourcemap

import (
	"fmt"

	"github.com/LongJohnCoder/source-map/internal/arrayset"
	"github.com/LongJohnCoder/source-map/internal/mapping"
)

// Bias selects the neighbouring mapping a query returns when nothing matches
// the requested position exactly.
type Bias = mapping.Bias

const (
	// GreatestLowerBound selects the closest mapping before the position. This
	// is the default.
	GreatestLowerBound = mapping.GreatestLowerBound
	// LeastUpperBound selects the closest mapping after the position.
	LeastUpperBound = mapping.LeastUpperBound
)

// Order of iteration over the mappings of a map.
type Order int

const (
	// GeneratedOrder iterates by generated line and column.
	GeneratedOrder Order = iota
	// OriginalOrder iterates by source, original line and original column.
	OriginalOrder
)

const (
	// NoColumn is the LastColumn of a generated position whose column span
	// hasn't been computed.
	NoColumn = mapping.NoColumn
	// Unbounded is the LastColumn of the final mapping on a generated line.
	Unbounded = mapping.Unbounded
	// AnyColumn may be passed to AllGeneratedPositionsFor to match a whole
	// original line.
	AnyColumn = -1
)

// Position is a location in generated or original text. Lines are 1-based,
// columns are 0-based.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// OriginalPosition is the result of an original position lookup. The zero
// value means that no original position was found.
type OriginalPosition struct {
	Source string
	Line   int
	Column int
	// Name is the original identifier, or "" if the mapping has none.
	Name string
}

// IsValid reports whether the lookup found an original position.
func (p OriginalPosition) IsValid() bool {
	return p.Line > 0
}

// GeneratedPosition is the result of a generated position lookup. The zero
// value means that no generated position was found.
type GeneratedPosition struct {
	Line   int
	Column int
	// LastColumn is the inclusive last column covered by the mapping, or
	// NoColumn until ComputeColumnSpans has been called.
	LastColumn int
}

// IsValid reports whether the lookup found a generated position.
func (p GeneratedPosition) IsValid() bool {
	return p.Line > 0
}

// Mapping is a single mapping as seen by EachMapping. Source has the map's
// source root applied.
type Mapping struct {
	GeneratedLine   int
	GeneratedColumn int
	Source          string
	OriginalLine    int
	OriginalColumn  int
	Name            string
}

// HasOriginal reports whether the mapping points into an original source.
func (m Mapping) HasOriginal() bool {
	return m.OriginalLine > 0
}

func checkPosition(line, column int) error {
	if line <= 0 {
		return fmt.Errorf("%w: line must be greater than or equal to 1, got %d", ErrInvalidPosition, line)
	}
	if column < 0 {
		return fmt.Errorf("%w: column must be greater than or equal to 0, got %d", ErrInvalidPosition, column)
	}
	return nil
}

// checkOriginalLine is checkPosition for queries accepting AnyColumn.
func checkOriginalLine(line, column int) error {
	if column == AnyColumn {
		column = 0
	}
	return checkPosition(line, column)
}

// index answers position queries over a fully parsed set of mappings. The
// generated slice is sorted by mapping.CompareGenerated, original holds the
// mappings with an original position sorted by source, line and column.
type index struct {
	sourceRoot string
	sources    *arrayset.Set
	names      *arrayset.Set
	generated  []*mapping.Mapping
	original   []*mapping.Mapping
	byOriginal mapping.Comparator
}

func newIndex(sourceRoot string, sources, names *arrayset.Set, generated []*mapping.Mapping) *index {
	full, position := mapping.OriginalOrder(sources, names)
	return &index{
		sourceRoot: sourceRoot,
		sources:    sources,
		names:      names,
		generated:  generated,
		original:   mapping.SortOriginal(generated, full),
		byOriginal: position,
	}
}

func (ix *index) source(m *mapping.Mapping) string {
	s := ix.sources.MustAt(m.Source)
	if ix.sourceRoot != "" {
		s = joinPath(ix.sourceRoot, s)
	}
	return s
}

// sourceIndex resolves a source path, which may include the source root, to
// its index.
func (ix *index) sourceIndex(source string) (int, bool) {
	if ix.sourceRoot != "" {
		source = relativePath(ix.sourceRoot, source)
	}
	idx, err := ix.sources.IndexOf(source)
	return idx, err == nil
}

func (ix *index) sameSource(a, b int) bool {
	return a == b || ix.sources.MustAt(a) == ix.sources.MustAt(b)
}

func (ix *index) public(m *mapping.Mapping) Mapping {
	out := Mapping{GeneratedLine: m.GeneratedLine, GeneratedColumn: m.GeneratedColumn}
	if m.HasOriginal() {
		out.Source = ix.source(m)
		out.OriginalLine = m.OriginalLine
		out.OriginalColumn = m.OriginalColumn
	}
	if m.HasName() {
		out.Name = ix.names.MustAt(m.Name)
	}
	return out
}

func (ix *index) originalPositionFor(line, column int, bias Bias) OriginalPosition {
	i := mapping.Search(mapping.New(line, column), ix.generated, mapping.ComparePosition, bias)
	if i < 0 {
		return OriginalPosition{}
	}
	m := ix.generated[i]
	if m.GeneratedLine != line || !m.HasOriginal() {
		return OriginalPosition{}
	}
	pos := OriginalPosition{Source: ix.source(m), Line: m.OriginalLine, Column: m.OriginalColumn}
	if m.HasName() {
		pos.Name = ix.names.MustAt(m.Name)
	}
	return pos
}

func (ix *index) generatedPositionFor(source string, line, column int, bias Bias) GeneratedPosition {
	idx, ok := ix.sourceIndex(source)
	if !ok {
		return GeneratedPosition{}
	}
	needle := &mapping.Mapping{Source: idx, OriginalLine: line, OriginalColumn: column}
	i := mapping.Search(needle, ix.original, ix.byOriginal, bias)
	if i < 0 {
		return GeneratedPosition{}
	}
	m := ix.original[i]
	if !ix.sameSource(m.Source, idx) {
		return GeneratedPosition{}
	}
	return generatedPosition(m)
}

// allGeneratedPositionsFor returns the generated positions of every mapping
// for the original line and column. If there are none, the next original
// column with mappings on the same line is used. With AnyColumn, all mappings
// of the line, or of the next line that has any, are returned.
func (ix *index) allGeneratedPositionsFor(source string, line, column int) []GeneratedPosition {
	idx, ok := ix.sourceIndex(source)
	if !ok {
		return nil
	}
	needle := &mapping.Mapping{Source: idx, OriginalLine: line, OriginalColumn: column}
	if column == AnyColumn {
		needle.OriginalColumn = 0
	}
	i := mapping.Search(needle, ix.original, ix.byOriginal, mapping.LeastUpperBound)
	if i < 0 {
		return nil
	}

	first := ix.original[i]
	var out []GeneratedPosition
	for _, m := range ix.original[i:] {
		if !ix.sameSource(m.Source, idx) {
			break
		}
		if column == AnyColumn {
			if m.OriginalLine != first.OriginalLine {
				break
			}
		} else if m.OriginalLine != line || m.OriginalColumn != first.OriginalColumn {
			break
		}
		out = append(out, generatedPosition(m))
	}
	return out
}

func (ix *index) eachMapping(order Order, f func(m Mapping)) {
	mappings := ix.generated
	if order == OriginalOrder {
		mappings = ix.original
	}
	for _, m := range mappings {
		f(ix.public(m))
	}
}

// computeColumnSpans assumes mappings are contiguous: each one ends where the
// next one on the same line starts, and the last one spans the rest of the
// line.
func (ix *index) computeColumnSpans() {
	for i, m := range ix.generated {
		if i+1 < len(ix.generated) {
			if next := ix.generated[i+1]; next.GeneratedLine == m.GeneratedLine {
				m.LastGeneratedColumn = next.GeneratedColumn - 1
				continue
			}
		}
		m.LastGeneratedColumn = mapping.Unbounded
	}
}

func generatedPosition(m *mapping.Mapping) GeneratedPosition {
	return GeneratedPosition{
		Line:       m.GeneratedLine,
		Column:     m.GeneratedColumn,
		LastColumn: m.LastGeneratedColumn,
	}
}
