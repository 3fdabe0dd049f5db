package mapping

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestListSnapshot(t *testing.T) {
	l := NewList()
	first := mapped(2, 0, 0, 1, 0, None)
	dup := mapped(2, 0, 0, 1, 0, None)
	l.Add(first)
	l.Add(New(1, 4))
	l.Add(dup)
	l.Add(New(1, 0))

	got := l.Snapshot()
	want := []*Mapping{New(1, 0), New(1, 4), first}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("l.Snapshot() returned diff (-want,+got):\n%s", diff)
	}
	if got[2] != first {
		t.Errorf("Got: duplicate survivor %p. Want: first inserted mapping %p.", got[2], first)
	}
	if l.Len() != 4 {
		t.Errorf("Got: l.Len() = %d. Want: 4.", l.Len())
	}
}

func TestListUnsortedForEach(t *testing.T) {
	l := NewList()
	inserted := []*Mapping{New(3, 0), New(1, 0), New(1, 0), New(2, 0)}
	for _, m := range inserted {
		l.Add(m)
	}

	// Take a snapshot first to make sure it doesn't disturb insertion order.
	_ = l.Snapshot()

	var seen []*Mapping
	l.UnsortedForEach(func(m *Mapping) {
		seen = append(seen, m)
	})
	if len(seen) != len(inserted) {
		t.Fatalf("Got: %d mappings visited. Want: %d.", len(seen), len(inserted))
	}
	for i := range inserted {
		if seen[i] != inserted[i] {
			t.Errorf("Got: mapping #%d = %v. Want: %v.", i, seen[i], inserted[i])
		}
	}
}

func TestListSnapshotAfterRewrite(t *testing.T) {
	l := NewList()
	l.Add(New(1, 0))
	l.Add(New(1, 5))
	_ = l.Snapshot()

	l.UnsortedForEach(func(m *Mapping) {
		if m.GeneratedColumn == 0 {
			m.GeneratedColumn = 9
		}
	})

	got := l.Snapshot()
	want := []*Mapping{New(1, 5), New(1, 9)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("l.Snapshot() after rewrite returned diff (-want,+got):\n%s", diff)
	}
}
