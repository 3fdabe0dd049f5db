package mapping

import "testing"

func TestSearch(t *testing.T) {
	haystack := []*Mapping{New(1, 0), New(3, 0), New(5, 0)}

	tests := []struct {
		descr  string
		needle *Mapping
		bias   Bias
		want   int
	}{
		{descr: "exact", needle: New(3, 0), bias: GreatestLowerBound, want: 1},
		{descr: "exact lub", needle: New(3, 0), bias: LeastUpperBound, want: 1},
		{descr: "glb between", needle: New(2, 0), bias: GreatestLowerBound, want: 0},
		{descr: "lub between", needle: New(2, 0), bias: LeastUpperBound, want: 1},
		{descr: "glb before first", needle: New(1, 0).withColumn(-1), bias: GreatestLowerBound, want: -1},
		{descr: "lub before first", needle: New(1, 0).withColumn(-1), bias: LeastUpperBound, want: 0},
		{descr: "glb after last", needle: New(9, 0), bias: GreatestLowerBound, want: 2},
		{descr: "lub after last", needle: New(9, 0), bias: LeastUpperBound, want: -1},
	}

	for _, test := range tests {
		t.Run(test.descr, func(t *testing.T) {
			got := Search(test.needle, haystack, ComparePosition, test.bias)
			if got != test.want {
				t.Errorf("Got: Search(%v, %v) = %d. Want: %d.", test.needle, test.bias, got, test.want)
			}
		})
	}
}

func TestSearchEmpty(t *testing.T) {
	for _, bias := range []Bias{GreatestLowerBound, LeastUpperBound} {
		if got := Search(New(1, 0), nil, ComparePosition, bias); got != -1 {
			t.Errorf("Got: Search(empty, %v) = %d. Want: -1.", bias, got)
		}
	}
}

func TestSearchReturnsFirstOfEqualRun(t *testing.T) {
	haystack := []*Mapping{
		New(1, 0),
		mapped(2, 0, 0, 1, 1, None),
		mapped(2, 0, 0, 1, 2, None),
		mapped(2, 0, 0, 1, 3, None),
		New(4, 0),
	}

	if got := Search(New(2, 0), haystack, ComparePosition, GreatestLowerBound); got != 1 {
		t.Errorf("Got: exact Search() = %d. Want: 1.", got)
	}
	if got := Search(New(3, 0), haystack, ComparePosition, GreatestLowerBound); got != 1 {
		t.Errorf("Got: GLB Search() = %d. Want: 1.", got)
	}
	if got := Search(New(1, 5), haystack, ComparePosition, LeastUpperBound); got != 1 {
		t.Errorf("Got: LUB Search() = %d. Want: 1.", got)
	}
}

func (m *Mapping) withColumn(column int) *Mapping {
	m.GeneratedColumn = column
	return m
}
