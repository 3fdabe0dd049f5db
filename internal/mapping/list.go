package mapping

import "slices"

// List accumulates mappings during generation.
//
// Mappings are kept in insertion order. A generated-order snapshot is built on
// demand and cached until the list is modified.
type List struct {
	items   []*Mapping
	inOrder bool
	sorted  []*Mapping
}

// NewList returns an empty list.
func NewList() *List {
	return &List{inOrder: true}
}

// Add appends the mapping to the list. The list takes ownership of m.
func (l *List) Add(m *Mapping) {
	if n := len(l.items); n > 0 && CompareGenerated(l.items[n-1], m) > 0 {
		l.inOrder = false
	}
	l.items = append(l.items, m)
	l.sorted = nil
}

// Len returns the number of mappings added, including duplicates.
func (l *List) Len() int {
	return len(l.items)
}

// UnsortedForEach calls f for every mapping in insertion order. f may modify
// the mapping; the cached snapshot is discarded afterwards.
func (l *List) UnsortedForEach(f func(m *Mapping)) {
	for _, m := range l.items {
		f(m)
	}
	l.sorted = nil
	l.inOrder = slices.IsSortedFunc(l.items, CompareGenerated)
}

// Snapshot returns the mappings sorted by CompareGenerated, with consecutive
// duplicates collapsed into their first occurrence. The returned slice is
// shared with the list and must not be modified.
func (l *List) Snapshot() []*Mapping {
	if l.sorted != nil {
		return l.sorted
	}
	sorted := slices.Clone(l.items)
	if !l.inOrder {
		// Stable sort keeps insertion order among equal mappings, so the first
		// inserted duplicate is the one that survives.
		slices.SortStableFunc(sorted, CompareGenerated)
	}
	l.sorted = Dedupe(sorted)
	return l.sorted
}

// Dedupe removes consecutive mappings that compare equal under
// CompareGenerated, keeping the first of each run. The slice is modified in
// place.
func Dedupe(sorted []*Mapping) []*Mapping {
	return slices.CompactFunc(sorted, func(a, b *Mapping) bool {
		return CompareGenerated(a, b) == 0
	})
}
