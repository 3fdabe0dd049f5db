package mapping

import (
	"fmt"
	"slices"
	"strings"

	"github.com/LongJohnCoder/source-map/internal/smerr"
	"github.com/LongJohnCoder/source-map/internal/vlq"
)

// Encode serializes mappings sorted by CompareGenerated into the "mappings"
// string of a version 3 source map.
//
// Generated lines are separated by ';' and segments within a line by ','.
// Each segment holds 1, 4 or 5 VLQ fields: generated column, source index,
// original line (0-based), original column and name index. Every field is
// stored relative to the previous value of the same field; only the generated
// column restarts at zero on each line. Consecutive duplicates are written
// once.
func Encode(sorted []*Mapping) string {
	var (
		buf          = make([]byte, 0, len(sorted)*6)
		line         = 1
		column       = 0
		source       = 0
		originalLine = 0
		originalCol  = 0
		name         = 0
	)
	for i, m := range sorted {
		if m.GeneratedLine != line {
			column = 0
			for line < m.GeneratedLine {
				buf = append(buf, ';')
				line++
			}
		} else if i > 0 {
			if CompareGenerated(m, sorted[i-1]) == 0 {
				continue
			}
			buf = append(buf, ',')
		}

		buf = vlq.Append(buf, m.GeneratedColumn-column)
		column = m.GeneratedColumn

		if !m.HasOriginal() {
			continue
		}
		buf = vlq.Append(buf, m.Source-source)
		source = m.Source

		buf = vlq.Append(buf, m.OriginalLine-1-originalLine)
		originalLine = m.OriginalLine - 1

		buf = vlq.Append(buf, m.OriginalColumn-originalCol)
		originalCol = m.OriginalColumn

		if m.Name != None {
			buf = vlq.Append(buf, m.Name-name)
			name = m.Name
		}
	}
	return string(buf)
}

// Decode parses a "mappings" string. Decoded source and name indices are
// checked against the sizes of the tables they index.
//
// The returned mappings are sorted by CompareGenerated. Any malformed segment
// fails the whole decode.
func Decode(s string, sources, names int) ([]*Mapping, error) {
	var (
		mappings     = make([]*Mapping, 0, strings.Count(s, ",")+strings.Count(s, ";")+1)
		cache        = map[string][]int{}
		line         = 1
		column       = 0
		source       = 0
		originalLine = 0
		originalCol  = 0
		name         = 0
	)

	for i := 0; i < len(s); {
		switch s[i] {
		case ';':
			line++
			column = 0
			i++
			continue
		case ',':
			i++
			continue
		}

		end := i
		for end < len(s) && s[end] != ',' && s[end] != ';' {
			end++
		}
		raw := s[i:end]
		fields, ok := cache[raw]
		if !ok {
			var err error
			fields, err = decodeSegment(s, i, end)
			if err != nil {
				return nil, fmt.Errorf("generated line %d: %w", line, err)
			}
			cache[raw] = fields
		}
		i = end

		m := New(line, column+fields[0])
		column = m.GeneratedColumn
		if column < 0 {
			return nil, fmt.Errorf("%w: negative generated column %d at line %d", smerr.ErrMalformedSegment, column, line)
		}

		if len(fields) > 1 {
			source += fields[1]
			originalLine += fields[2]
			originalCol += fields[3]
			if source < 0 || source >= sources {
				return nil, fmt.Errorf("%w: source index %d out of range [0, %d) at %d:%d", smerr.ErrMalformedSegment, source, sources, line, column)
			}
			if originalLine < 0 || originalCol < 0 {
				return nil, fmt.Errorf("%w: negative original position %d:%d at %d:%d", smerr.ErrMalformedSegment, originalLine+1, originalCol, line, column)
			}
			m.Source = source
			m.OriginalLine = originalLine + 1
			m.OriginalColumn = originalCol

			if len(fields) > 4 {
				name += fields[4]
				if name < 0 || name >= names {
					return nil, fmt.Errorf("%w: name index %d out of range [0, %d) at %d:%d", smerr.ErrMalformedSegment, name, names, line, column)
				}
				m.Name = name
			}
		}
		mappings = append(mappings, m)
	}

	slices.SortStableFunc(mappings, CompareGenerated)
	return mappings, nil
}

func decodeSegment(s string, start, end int) ([]int, error) {
	fields := make([]int, 0, 5)
	for i := start; i < end; {
		v, next, err := vlq.Decode(s[:end], i)
		if err != nil {
			return nil, err
		}
		fields = append(fields, v)
		i = next
	}
	switch len(fields) {
	case 1, 4, 5:
		return fields, nil
	case 2:
		return nil, fmt.Errorf("%w: found a source, but no line and column in %q", smerr.ErrMalformedSegment, s[start:end])
	case 3:
		return nil, fmt.Errorf("%w: found a source and line, but no column in %q", smerr.ErrMalformedSegment, s[start:end])
	default:
		return nil, fmt.Errorf("%w: %d fields in %q", smerr.ErrMalformedSegment, len(fields), s[start:end])
	}
}

// SortOriginal returns the mappings that carry an original position, sorted
// by the given comparator. The input slice is not modified; records are shared.
func SortOriginal(generated []*Mapping, compare Comparator) []*Mapping {
	original := make([]*Mapping, 0, len(generated))
	for _, m := range generated {
		if m.HasOriginal() {
			original = append(original, m)
		}
	}
	slices.SortStableFunc(original, compare)
	return original
}
