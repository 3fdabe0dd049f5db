// Package arrayset provides an insertion-ordered string interning table.
package arrayset

import (
	"fmt"

	"github.com/LongJohnCoder/source-map/internal/smerr"
)

// Set maps strings to stable, dense, non-negative indices in the order they
// were first added.
//
// A Set created with AllowDuplicates keeps every added string, even repeated
// ones, so that indices in a third-party source map remain valid. In that mode
// IndexOf returns the index of the first occurrence. A strict Set rejects
// repeated strings with smerr.ErrDuplicateKey.
//
// The zero value is an empty duplicate-tolerant set that ignores repeats.
type Set struct {
	strict bool
	keep   bool
	index  map[string]int
	items  []string
}

// New returns an empty set that ignores repeated insertions.
func New() *Set {
	return &Set{}
}

// NewStrict returns an empty set that rejects repeated insertions.
func NewStrict() *Set {
	return &Set{strict: true}
}

// FromSlice builds a set from the given strings. If allowDuplicates is true,
// repeated strings occupy their own indices, otherwise they are collapsed into
// the first occurrence.
func FromSlice(items []string, allowDuplicates bool) *Set {
	s := &Set{keep: allowDuplicates}
	for _, item := range items {
		s.add(item)
	}
	return s
}

// Add the string to the set. Adding a string that is already present is a
// no-op unless the set is strict.
func (s *Set) Add(str string) error {
	if s.strict && s.Has(str) {
		return fmt.Errorf("%w: %q", smerr.ErrDuplicateKey, str)
	}
	s.add(str)
	return nil
}

func (s *Set) add(str string) {
	if s.index == nil {
		s.index = map[string]int{}
	}
	_, ok := s.index[str]
	if ok && !s.keep {
		return
	}
	if !ok {
		s.index[str] = len(s.items)
	}
	s.items = append(s.items, str)
}

// Has reports whether the string is present in the set.
func (s *Set) Has(str string) bool {
	_, ok := s.index[str]
	return ok
}

// IndexOf returns the index of the string, or smerr.ErrNotFound.
func (s *Set) IndexOf(str string) (int, error) {
	if idx, ok := s.index[str]; ok {
		return idx, nil
	}
	return 0, fmt.Errorf("%w: %q is not in the set", smerr.ErrNotFound, str)
}

// At returns the string at the given index, or smerr.ErrIndexOutOfRange.
func (s *Set) At(idx int) (string, error) {
	if idx < 0 || idx >= len(s.items) {
		return "", fmt.Errorf("%w: %d not in [0, %d)", smerr.ErrIndexOutOfRange, idx, len(s.items))
	}
	return s.items[idx], nil
}

// MustAt is like At, but panics if the index is out of range. Use it only with
// indices that were obtained from this set.
func (s *Set) MustAt(idx int) string {
	str, err := s.At(idx)
	if err != nil {
		panic(err)
	}
	return str
}

// Len returns the number of entries in the set.
func (s *Set) Len() int {
	return len(s.items)
}

// Slice returns a copy of the set contents in insertion order.
func (s *Set) Slice() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}
