package sourcemap

import (
	"fmt"
	"slices"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/LongJohnCoder/source-map/internal/arrayset"
	"github.com/LongJohnCoder/source-map/internal/mapping"
)

// section is one sub-map of an indexed map, starting at a 0-based generated
// offset.
type section struct {
	line     int
	column   int
	consumer Consumer
}

// toSection translates a generated position into the section's coordinates.
// The column offset only applies to the section's first line.
func (s *section) toSection(line, column int) (int, int) {
	if line == s.line+1 {
		column -= s.column
	}
	return line - s.line, column
}

// fromSection is the inverse of toSection.
func (s *section) fromSection(line, column int) (int, int) {
	if line == 1 {
		column += s.column
	}
	return line + s.line, column
}

func (s *section) generatedPosition(p GeneratedPosition) GeneratedPosition {
	line, column := s.fromSection(p.Line, p.Column)
	out := GeneratedPosition{Line: line, Column: column, LastColumn: p.LastColumn}
	if p.Line == 1 && p.LastColumn != NoColumn && p.LastColumn != Unbounded {
		out.LastColumn += s.column
	}
	return out
}

// IndexedConsumer is a consumer of a map composed of sections, each with its
// own sub-map covering the generated text from its offset up to the next
// section.
type IndexedConsumer struct {
	file     string
	sections []*section

	// Mappings of all sections merged into one index, built on first use.
	flat    *index
	flatErr error
}

var _ Consumer = (*IndexedConsumer)(nil)

func newIndexedConsumer(raw *RawMap) (*IndexedConsumer, error) {
	if raw.Version != SupportedVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, raw.Version)
	}

	c := &IndexedConsumer{file: raw.File}
	for i, s := range raw.Sections {
		if s.URL != "" {
			return nil, fmt.Errorf("%w: section %d references map %q, only embedded maps are supported", ErrUnsupportedFeature, i, s.URL)
		}
		if s.Map == nil {
			return nil, fmt.Errorf("%w: section %d has no %q", ErrMissingField, i, "map")
		}
		if s.Offset.Line < 0 || s.Offset.Column < 0 {
			return nil, fmt.Errorf("%w: section %d has negative offset %d:%d", ErrSectionOrder, i, s.Offset.Line, s.Offset.Column)
		}
		if n := len(c.sections); n > 0 {
			prev := c.sections[n-1]
			if s.Offset.Line < prev.line || (s.Offset.Line == prev.line && s.Offset.Column < prev.column) {
				return nil, fmt.Errorf("%w: section %d at %d:%d follows a section at %d:%d", ErrSectionOrder, i, s.Offset.Line, s.Offset.Column, prev.line, prev.column)
			}
		}

		consumer, err := NewConsumerFromRaw(s.Map)
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", i, err)
		}
		c.sections = append(c.sections, &section{
			line:     s.Offset.Line,
			column:   s.Offset.Column,
			consumer: consumer,
		})
	}
	return c, nil
}

// File implements Consumer.
func (c *IndexedConsumer) File() string { return c.file }

// SourceRoot implements Consumer. Indexed maps have no source root of their
// own; the sections' roots are applied to their sources.
func (c *IndexedConsumer) SourceRoot() string { return "" }

// Sources implements Consumer. The sources of all sections are concatenated.
func (c *IndexedConsumer) Sources() []string {
	var sources []string
	for _, s := range c.sections {
		sources = append(sources, s.consumer.Sources()...)
	}
	return sources
}

// sectionAt returns the section covering the generated position, or nil.
func (c *IndexedConsumer) sectionAt(line, column int) *section {
	needle := &section{line: line - 1, column: column}
	i := mapping.Search(needle, c.sections, func(a, b *section) int {
		if a.line != b.line {
			return a.line - b.line
		}
		return a.column - b.column
	}, mapping.GreatestLowerBound)
	if i < 0 {
		return nil
	}
	// Sections sharing an offset before the last one are empty.
	for i+1 < len(c.sections) && c.sections[i+1].line == c.sections[i].line && c.sections[i+1].column == c.sections[i].column {
		i++
	}
	return c.sections[i]
}

// OriginalPositionFor implements Consumer by querying the section covering
// the position.
func (c *IndexedConsumer) OriginalPositionFor(line, column int, bias Bias) (OriginalPosition, error) {
	if err := checkPosition(line, column); err != nil {
		return OriginalPosition{}, err
	}
	s := c.sectionAt(line, column)
	if s == nil {
		return OriginalPosition{}, nil
	}
	line, column = s.toSection(line, column)
	return s.consumer.OriginalPositionFor(line, column, bias)
}

// GeneratedPositionFor implements Consumer. The first section which has the
// source and maps the position wins.
func (c *IndexedConsumer) GeneratedPositionFor(source string, line, column int, bias Bias) (GeneratedPosition, error) {
	if err := checkPosition(line, column); err != nil {
		return GeneratedPosition{}, err
	}
	for _, s := range c.sections {
		if !slices.Contains(s.consumer.Sources(), source) {
			continue
		}
		pos, err := s.consumer.GeneratedPositionFor(source, line, column, bias)
		if err != nil {
			return GeneratedPosition{}, err
		}
		if pos.IsValid() {
			return s.generatedPosition(pos), nil
		}
	}
	return GeneratedPosition{}, nil
}

// parsed merges the mappings of all sections, in generated coordinates of the
// whole map.
func (c *IndexedConsumer) parsed() (*index, error) {
	if c.flat != nil || c.flatErr != nil {
		return c.flat, c.flatErr
	}
	start := time.Now()
	sources, names := arrayset.New(), arrayset.New()
	var generated []*mapping.Mapping
	for i, s := range c.sections {
		err := s.consumer.EachMapping(GeneratedOrder, func(m Mapping) {
			line, column := s.fromSection(m.GeneratedLine, m.GeneratedColumn)
			merged := mapping.New(line, column)
			if m.HasOriginal() {
				merged.Source = intern(sources, m.Source)
				merged.OriginalLine = m.OriginalLine
				merged.OriginalColumn = m.OriginalColumn
				if m.Name != "" {
					merged.Name = intern(names, m.Name)
				}
			}
			generated = append(generated, merged)
		})
		if err != nil {
			c.flatErr = fmt.Errorf("section %d: %w", i, err)
			return nil, c.flatErr
		}
	}
	slices.SortStableFunc(generated, mapping.CompareGenerated)
	c.flat = newIndex("", sources, names, generated)
	log.Debugf("Merged %d mappings of %d sections of %q in %v.", len(generated), len(c.sections), c.file, time.Since(start))
	return c.flat, nil
}

// AllGeneratedPositionsFor implements Consumer.
func (c *IndexedConsumer) AllGeneratedPositionsFor(source string, line, column int) ([]GeneratedPosition, error) {
	if err := checkOriginalLine(line, column); err != nil {
		return nil, err
	}
	ix, err := c.parsed()
	if err != nil {
		return nil, err
	}
	return ix.allGeneratedPositionsFor(source, line, column), nil
}

// EachMapping implements Consumer.
func (c *IndexedConsumer) EachMapping(order Order, f func(m Mapping)) error {
	ix, err := c.parsed()
	if err != nil {
		return err
	}
	ix.eachMapping(order, f)
	return nil
}

// ComputeColumnSpans implements Consumer.
func (c *IndexedConsumer) ComputeColumnSpans() error {
	for i, s := range c.sections {
		if err := s.consumer.ComputeColumnSpans(); err != nil {
			return fmt.Errorf("section %d: %w", i, err)
		}
	}
	ix, err := c.parsed()
	if err != nil {
		return err
	}
	ix.computeColumnSpans()
	return nil
}

// HasContentsOfAllSources implements Consumer.
func (c *IndexedConsumer) HasContentsOfAllSources() bool {
	for _, s := range c.sections {
		if !s.consumer.HasContentsOfAllSources() {
			return false
		}
	}
	return true
}

// SourceContentFor implements Consumer.
func (c *IndexedConsumer) SourceContentFor(source string) (string, error) {
	if content, ok := c.SourceContent(source); ok {
		return content, nil
	}
	return "", fmt.Errorf("%w: %q", ErrSourceNotFound, source)
}

// SourceContent implements Consumer.
func (c *IndexedConsumer) SourceContent(source string) (string, bool) {
	for _, s := range c.sections {
		if content, ok := s.consumer.SourceContent(source); ok {
			return content, true
		}
	}
	return "", false
}

// GlobalScope implements Consumer. Sections each carry their own environment,
// so an indexed map has no single global scope and nil is returned.
func (c *IndexedConsumer) GlobalScope() (*Scope, error) {
	return nil, nil
}

// ScopeAt implements Consumer by querying the section covering the position.
// Bounds of the returned scope are relative to that section.
func (c *IndexedConsumer) ScopeAt(line, column int) (*Scope, error) {
	if err := checkPosition(line, column); err != nil {
		return nil, err
	}
	s := c.sectionAt(line, column)
	if s == nil {
		return nil, nil
	}
	line, column = s.toSection(line, column)
	return s.consumer.ScopeAt(line, column)
}

// intern adds the string to a set that ignores repeats and returns its index.
func intern(set *arrayset.Set, s string) int {
	_ = set.Add(s) // Never fails on a non-strict set.
	idx, _ := set.IndexOf(s)
	return idx
}
