package mapping

import "strings"

// Comparator defines a three-way order over mappings.
type Comparator func(a, b *Mapping) int

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// CompareGenerated orders mappings by generated line and column, using the
// remaining fields (source, original line, original column, name) as
// tie-breaks. Absent source and name indices sort before present ones.
//
// Two mappings compare equal only if they carry identical information, which
// is how duplicates are detected in a sorted sequence.
func CompareGenerated(a, b *Mapping) int {
	if c := ComparePosition(a, b); c != 0 {
		return c
	}
	if c := compareInt(a.Source, b.Source); c != 0 {
		return c
	}
	if a.HasOriginal() {
		if c := compareInt(a.OriginalLine, b.OriginalLine); c != 0 {
			return c
		}
		if c := compareInt(a.OriginalColumn, b.OriginalColumn); c != 0 {
			return c
		}
	}
	return compareInt(a.Name, b.Name)
}

// ComparePosition orders mappings by generated line and column only.
func ComparePosition(a, b *Mapping) int {
	if c := compareInt(a.GeneratedLine, b.GeneratedLine); c != 0 {
		return c
	}
	return compareInt(a.GeneratedColumn, b.GeneratedColumn)
}

// Table resolves source or name indices to strings.
type Table interface {
	MustAt(idx int) string
}

// OriginalOrder returns comparators for the original order of mappings whose
// source and name indices resolve through the given tables.
//
// The full comparator orders by source string, original line, original
// column and name string (absent names first), falling back to the generated
// position. The position comparator stops after the original column and is
// meant for searching.
func OriginalOrder(sources, names Table) (full, position Comparator) {
	position = func(a, b *Mapping) int {
		if a.Source != b.Source {
			if c := strings.Compare(resolve(sources, a.Source), resolve(sources, b.Source)); c != 0 {
				return c
			}
		}
		if c := compareInt(a.OriginalLine, b.OriginalLine); c != 0 {
			return c
		}
		return compareInt(a.OriginalColumn, b.OriginalColumn)
	}
	full = func(a, b *Mapping) int {
		if c := position(a, b); c != 0 {
			return c
		}
		if a.Name != b.Name {
			switch {
			case a.Name == None:
				return -1
			case b.Name == None:
				return 1
			}
			if c := strings.Compare(names.MustAt(a.Name), names.MustAt(b.Name)); c != 0 {
				return c
			}
		}
		return ComparePosition(a, b)
	}
	return full, position
}

func resolve(t Table, idx int) string {
	if idx == None {
		return ""
	}
	return t.MustAt(idx)
}
