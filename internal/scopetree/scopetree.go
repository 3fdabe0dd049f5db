// Package scopetree stores sibling scopes ordered by their start mapping and
// answers which of them contains a generated position.
package scopetree

import (
	"fmt"

	"github.com/emirpasic/gods/trees/redblacktree"

	"github.com/LongJohnCoder/source-map/internal/mapping"
	"github.com/LongJohnCoder/source-map/internal/smerr"
)

// BoundsFunc returns the mappings delimiting the inclusive range of generated
// positions spanned by a scope.
type BoundsFunc[T any] func(s T) (start, end *mapping.Mapping)

// Tree is a balanced tree of sibling scopes keyed by their start mapping.
type Tree[T any] struct {
	rb     *redblacktree.Tree
	bounds BoundsFunc[T]
}

// New returns an empty tree of scopes delimited by bounds.
func New[T any](bounds BoundsFunc[T]) *Tree[T] {
	return &Tree[T]{
		bounds: bounds,
		rb: redblacktree.NewWith(func(a, b interface{}) int {
			as, _ := bounds(a.(T))
			bs, _ := bounds(b.(T))
			return mapping.CompareGenerated(as, bs)
		}),
	}
}

// Insert adds the scope to the tree. A scope whose start mapping is identical
// to an existing sibling's overlaps it and is rejected with
// smerr.ErrScopeContainment, leaving the tree unchanged.
func (t *Tree[T]) Insert(s T) error {
	if _, found := t.rb.Get(s); found {
		start, _ := t.bounds(s)
		return fmt.Errorf("%w: a sibling scope already starts at %d:%d", smerr.ErrScopeContainment, start.GeneratedLine, start.GeneratedColumn)
	}
	t.rb.Put(s, s)
	return nil
}

// Len returns the number of scopes in the tree.
func (t *Tree[T]) Len() int {
	return t.rb.Size()
}

// Contains compares a generated position with the inclusive range [start, end].
// It returns 0 if the position is inside, -1 if it precedes the range, and +1
// if it follows it.
func Contains(line, column int, start, end *mapping.Mapping) int {
	point := mapping.Mapping{GeneratedLine: line, GeneratedColumn: column}
	if mapping.ComparePosition(&point, start) < 0 {
		return -1
	}
	if mapping.ComparePosition(&point, end) > 0 {
		return 1
	}
	return 0
}

// Search descends the tree and returns the scope containing the generated
// position.
func (t *Tree[T]) Search(line, column int) (T, bool) {
	node := t.rb.Root
	for node != nil {
		s := node.Key.(T)
		start, end := t.bounds(s)
		switch c := Contains(line, column, start, end); {
		case c < 0:
			node = node.Left
		case c > 0:
			node = node.Right
		default:
			return s, true
		}
	}
	var zero T
	return zero, false
}

// Walk calls f for every scope in start order.
func (t *Tree[T]) Walk(f func(s T)) {
	it := t.rb.Iterator()
	for it.Next() {
		f(it.Key().(T))
	}
}

// Check verifies that the scopes in the tree are pairwise non-overlapping,
// and, if parentStart and parentEnd are non-nil, that each of them lies within
// the parent's bounds. Violations fail with smerr.ErrScopeContainment.
func (t *Tree[T]) Check(parentStart, parentEnd *mapping.Mapping) error {
	var (
		prevEnd *mapping.Mapping
		err     error
	)
	t.Walk(func(s T) {
		if err != nil {
			return
		}
		start, end := t.bounds(s)
		if prevEnd != nil && mapping.ComparePosition(prevEnd, start) >= 0 {
			err = fmt.Errorf("%w: scope starting at %v overlaps a sibling ending at %v", smerr.ErrScopeContainment, start, prevEnd)
			return
		}
		prevEnd = end
		if parentStart == nil || parentEnd == nil {
			return
		}
		if mapping.ComparePosition(start, parentStart) < 0 || mapping.ComparePosition(end, parentEnd) > 0 {
			err = fmt.Errorf("%w: scope [%v, %v] is not within its parent [%v, %v]", smerr.ErrScopeContainment, start, end, parentStart, parentEnd)
		}
	})
	return err
}
