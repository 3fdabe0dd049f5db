package sourcemap

import (
	"errors"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/LongJohnCoder/source-map/internal/testingx"
)

// indexedMap has two sections. The first maps generated 1:0 and 1:1 to
// one.js 1:0 and 1:1. The second starts at 2:5 and maps its own 1:0 and 2:0
// to two.js 1:0 (named "x") and 2:0.
const indexedMap = `{
	"version": 3,
	"file": "min.js",
	"sections": [{
		"offset": {"line": 0, "column": 0},
		"map": {"version": 3, "sources": ["one.js"], "names": [], "mappings": "AAAA,CAAC", "sourcesContent": ["one"]}
	}, {
		"offset": {"line": 1, "column": 5},
		"map": {"version": 3, "sources": ["two.js"], "names": ["x"], "mappings": "AAAAA;AACA"}
	}]
}`

func TestIndexedOriginalPositionFor(t *testing.T) {
	c := testingx.Must[Consumer](t)(NewConsumer([]byte(indexedMap)))
	if _, ok := c.(*IndexedConsumer); !ok {
		t.Fatalf("Got: %T. Want: *IndexedConsumer.", c)
	}

	tests := []struct {
		descr  string
		line   int
		column int
		want   OriginalPosition
	}{
		{descr: "first section", line: 1, column: 1, want: OriginalPosition{Source: "one.js", Line: 1, Column: 1}},
		{descr: "second section start", line: 2, column: 5, want: OriginalPosition{Source: "two.js", Line: 1, Column: 0, Name: "x"}},
		{descr: "second section next line", line: 3, column: 0, want: OriginalPosition{Source: "two.js", Line: 2, Column: 0}},
		{descr: "before second section", line: 2, column: 2, want: OriginalPosition{}},
	}

	for _, test := range tests {
		t.Run(test.descr, func(t *testing.T) {
			got, err := c.OriginalPositionFor(test.line, test.column, GreatestLowerBound)
			if err != nil {
				t.Fatalf("Got: OriginalPositionFor() returned error: %s. Want: no error.", err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("OriginalPositionFor(%d, %d) returned diff (-want,+got):\n%s", test.line, test.column, diff)
			}
		})
	}
}

func TestIndexedGeneratedPositionFor(t *testing.T) {
	c := testingx.Must[Consumer](t)(NewConsumer([]byte(indexedMap)))

	tests := []struct {
		descr  string
		source string
		line   int
		column int
		want   GeneratedPosition
	}{
		{descr: "first section", source: "one.js", line: 1, column: 1, want: GeneratedPosition{1, 1, NoColumn}},
		{descr: "offset column", source: "two.js", line: 1, column: 0, want: GeneratedPosition{2, 5, NoColumn}},
		{descr: "offset line only", source: "two.js", line: 2, column: 0, want: GeneratedPosition{3, 0, NoColumn}},
		{descr: "unknown source", source: "three.js", line: 1, column: 0, want: GeneratedPosition{}},
	}

	for _, test := range tests {
		t.Run(test.descr, func(t *testing.T) {
			got, err := c.GeneratedPositionFor(test.source, test.line, test.column, GreatestLowerBound)
			if err != nil {
				t.Fatalf("Got: GeneratedPositionFor() returned error: %s. Want: no error.", err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("GeneratedPositionFor(%q, %d, %d) returned diff (-want,+got):\n%s", test.source, test.line, test.column, diff)
			}
		})
	}
}

func TestIndexedEachMapping(t *testing.T) {
	c := testingx.Must[Consumer](t)(NewConsumer([]byte(indexedMap)))

	var got []Mapping
	if err := c.EachMapping(GeneratedOrder, func(m Mapping) { got = append(got, m) }); err != nil {
		t.Fatalf("Got: EachMapping() returned error: %s. Want: no error.", err)
	}
	want := []Mapping{
		{GeneratedLine: 1, GeneratedColumn: 0, Source: "one.js", OriginalLine: 1, OriginalColumn: 0},
		{GeneratedLine: 1, GeneratedColumn: 1, Source: "one.js", OriginalLine: 1, OriginalColumn: 1},
		{GeneratedLine: 2, GeneratedColumn: 5, Source: "two.js", OriginalLine: 1, OriginalColumn: 0, Name: "x"},
		{GeneratedLine: 3, GeneratedColumn: 0, Source: "two.js", OriginalLine: 2, OriginalColumn: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EachMapping() returned diff (-want,+got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"one.js", "two.js"}, c.Sources()); diff != "" {
		t.Errorf("Sources() returned diff (-want,+got):\n%s", diff)
	}
}

func TestIndexedSharedSource(t *testing.T) {
	// Both sections map to shared.js 1:0, each through its own source index.
	c := testingx.Must[Consumer](t)(NewConsumer([]byte(`{"version":3,"sections":[
		{"offset":{"line":0,"column":0},"map":{"version":3,"sources":["shared.js"],"names":[],"mappings":"AAAA"}},
		{"offset":{"line":2,"column":0},"map":{"version":3,"sources":["other.js","shared.js"],"names":[],"mappings":"AAAA,ECAA"}}
	]}`)))

	got := testingx.Must[[]GeneratedPosition](t)(c.AllGeneratedPositionsFor("shared.js", 1, 0))
	want := []GeneratedPosition{{1, 0, NoColumn}, {3, 2, NoColumn}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AllGeneratedPositionsFor() returned diff (-want,+got):\n%s", diff)
	}
}

func TestIndexedComputeColumnSpans(t *testing.T) {
	c := testingx.Must[Consumer](t)(NewConsumer([]byte(indexedMap)))
	if err := c.ComputeColumnSpans(); err != nil {
		t.Fatalf("Got: ComputeColumnSpans() returned error: %s. Want: no error.", err)
	}

	first := testingx.Must[GeneratedPosition](t)(c.GeneratedPositionFor("one.js", 1, 0, GreatestLowerBound))
	if diff := cmp.Diff(GeneratedPosition{1, 0, 0}, first); diff != "" {
		t.Errorf("GeneratedPositionFor(one.js) returned diff (-want,+got):\n%s", diff)
	}
	second := testingx.Must[GeneratedPosition](t)(c.GeneratedPositionFor("two.js", 1, 0, GreatestLowerBound))
	if diff := cmp.Diff(GeneratedPosition{2, 5, Unbounded}, second); diff != "" {
		t.Errorf("GeneratedPositionFor(two.js) returned diff (-want,+got):\n%s", diff)
	}
	all := testingx.Must[[]GeneratedPosition](t)(c.AllGeneratedPositionsFor("one.js", 1, 1))
	if diff := cmp.Diff([]GeneratedPosition{{1, 1, Unbounded}}, all); diff != "" {
		t.Errorf("AllGeneratedPositionsFor(one.js) returned diff (-want,+got):\n%s", diff)
	}
}

func TestIndexedSourceContent(t *testing.T) {
	c := testingx.Must[Consumer](t)(NewConsumer([]byte(indexedMap)))

	if got := testingx.Must[string](t)(c.SourceContentFor("one.js")); got != "one" {
		t.Errorf("Got: SourceContentFor(one.js) = %q. Want: %q.", got, "one")
	}
	if _, err := c.SourceContentFor("two.js"); !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("Got: SourceContentFor(two.js) returned error %v. Want: %v.", err, ErrSourceNotFound)
	}
	if c.HasContentsOfAllSources() {
		t.Errorf("Got: HasContentsOfAllSources() = true. Want: false.")
	}
	if global, err := c.GlobalScope(); global != nil || err != nil {
		t.Errorf("Got: GlobalScope() = %v, %v. Want: nil, no error.", global, err)
	}
}

func TestIndexedScopeAt(t *testing.T) {
	g := scopedGenerator(t, GeneratorOptions{})
	section := testingx.Must[*RawMap](t)(g.ToJSON())
	raw := &RawMap{Version: 3, Sections: []RawSection{{Offset: RawOffset{Line: 10}, Map: section}}}
	c := testingx.Must[Consumer](t)(NewConsumerFromRaw(raw))

	s := testingx.Must[*Scope](t)(c.ScopeAt(12, 5))
	if s == nil || s.Type() != ScopeBlock {
		t.Fatalf("Got: ScopeAt(12, 5) = %v. Want: the block scope.", s)
	}
	if got, want := s.Start(), (Position{2, 0}); got != want {
		t.Errorf("Got: Start() = %v. Want: section relative %v.", got, want)
	}
	if s, err := c.ScopeAt(5, 0); s != nil || err != nil {
		t.Errorf("Got: ScopeAt(5, 0) = %v, %v. Want: nil before the first section.", s, err)
	}
}

func TestIndexedErrors(t *testing.T) {
	section := func(line, column int) string {
		return `{"offset":{"line":` + strconv.Itoa(line) + `,"column":` + strconv.Itoa(column) + `},"map":{"version":3,"sources":[],"names":[],"mappings":""}}`
	}

	tests := []struct {
		descr string
		input string
		want  error
	}{
		{
			descr: "sections out of order",
			input: `{"version":3,"sections":[` + section(0, 0) + `,` + section(5, 0) + `,` + section(4, 0) + `]}`,
			want:  ErrSectionOrder,
		}, {
			descr: "columns out of order",
			input: `{"version":3,"sections":[` + section(1, 4) + `,` + section(1, 3) + `]}`,
			want:  ErrSectionOrder,
		}, {
			descr: "negative offset",
			input: `{"version":3,"sections":[` + section(-1, 0) + `]}`,
			want:  ErrSectionOrder,
		}, {
			descr: "url section",
			input: `{"version":3,"sections":[{"offset":{"line":0,"column":0},"url":"other.map"}]}`,
			want:  ErrUnsupportedFeature,
		}, {
			descr: "section without map",
			input: `{"version":3,"sections":[{"offset":{"line":0,"column":0}}]}`,
			want:  ErrMissingField,
		}, {
			descr: "bad section version",
			input: `{"version":3,"sections":[{"offset":{"line":0,"column":0},"map":{"version":2,"sources":[],"mappings":""}}]}`,
			want:  ErrUnsupportedVersion,
		}, {
			descr: "bad version",
			input: `{"version":4,"sections":[]}`,
			want:  ErrUnsupportedVersion,
		},
	}

	for _, test := range tests {
		t.Run(test.descr, func(t *testing.T) {
			_, err := NewConsumer([]byte(test.input))
			if !errors.Is(err, test.want) {
				t.Errorf("Got: NewConsumer() returned error %v. Want: %v.", err, test.want)
			}
			if !errors.Is(err, ErrFormat) {
				t.Errorf("Got: error %v is not a format error. Want: a format error.", err)
			}
		})
	}
}

func TestIndexedEqualOffsets(t *testing.T) {
	// An empty section may share its offset with the next one.
	c := testingx.Must[Consumer](t)(NewConsumer([]byte(`{"version":3,"sections":[
		{"offset":{"line":0,"column":0},"map":{"version":3,"sources":[],"names":[],"mappings":""}},
		{"offset":{"line":0,"column":0},"map":{"version":3,"sources":["one.js"],"names":[],"mappings":"AAAA"}}
	]}`)))
	got := testingx.Must[OriginalPosition](t)(c.OriginalPositionFor(1, 0, GreatestLowerBound))
	if diff := cmp.Diff(OriginalPosition{Source: "one.js", Line: 1}, got); diff != "" {
		t.Errorf("OriginalPositionFor(1, 0) returned diff (-want,+got):\n%s", diff)
	}
}
