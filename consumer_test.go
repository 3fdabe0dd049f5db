package sourcemap

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/LongJohnCoder/source-map/internal/testingx"
)

func TestConsumerSingleMapping(t *testing.T) {
	c := testingx.Must[Consumer](t)(NewConsumer([]byte(`{"version":3,"sources":["foo.js"],"names":[],"mappings":"AAAA"}`)))

	got, err := c.OriginalPositionFor(1, 0, GreatestLowerBound)
	if err != nil {
		t.Fatalf("Got: OriginalPositionFor() returned error: %s. Want: no error.", err)
	}
	want := OriginalPosition{Source: "foo.js", Line: 1, Column: 0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("OriginalPositionFor(1, 0) returned diff (-want,+got):\n%s", diff)
	}
}

// bias.js maps generated columns 0 and 5 of line 1 to original columns 0 and
// 2 of line 1 of foo.js.
const biasMap = `{"version":3,"sources":["foo.js"],"names":[],"mappings":"AAAA,KAAE"}`

func TestOriginalPositionFor(t *testing.T) {
	c := testingx.Must[Consumer](t)(NewConsumer([]byte(biasMap)))

	tests := []struct {
		descr  string
		line   int
		column int
		bias   Bias
		want   OriginalPosition
	}{
		{descr: "exact", line: 1, column: 5, want: OriginalPosition{Source: "foo.js", Line: 1, Column: 2}},
		{descr: "greatest lower bound", line: 1, column: 3, bias: GreatestLowerBound, want: OriginalPosition{Source: "foo.js", Line: 1, Column: 0}},
		{descr: "least upper bound", line: 1, column: 3, bias: LeastUpperBound, want: OriginalPosition{Source: "foo.js", Line: 1, Column: 2}},
		{descr: "past the last mapping", line: 1, column: 6, bias: LeastUpperBound, want: OriginalPosition{}},
		{descr: "past the last mapping lower bound", line: 1, column: 60, bias: GreatestLowerBound, want: OriginalPosition{Source: "foo.js", Line: 1, Column: 2}},
		{descr: "unmapped line", line: 2, column: 0, want: OriginalPosition{}},
	}

	for _, test := range tests {
		t.Run(test.descr, func(t *testing.T) {
			got, err := c.OriginalPositionFor(test.line, test.column, test.bias)
			if err != nil {
				t.Fatalf("Got: OriginalPositionFor() returned error: %s. Want: no error.", err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("OriginalPositionFor(%d, %d, %v) returned diff (-want,+got):\n%s", test.line, test.column, test.bias, diff)
			}
		})
	}
}

func TestGeneratedPositionFor(t *testing.T) {
	c := testingx.Must[Consumer](t)(NewConsumer([]byte(biasMap)))

	tests := []struct {
		descr  string
		source string
		line   int
		column int
		bias   Bias
		want   GeneratedPosition
	}{
		{descr: "exact", source: "foo.js", line: 1, column: 2, want: GeneratedPosition{Line: 1, Column: 5, LastColumn: NoColumn}},
		{descr: "greatest lower bound", source: "foo.js", line: 1, column: 1, want: GeneratedPosition{Line: 1, Column: 0, LastColumn: NoColumn}},
		{descr: "least upper bound", source: "foo.js", line: 1, column: 1, bias: LeastUpperBound, want: GeneratedPosition{Line: 1, Column: 5, LastColumn: NoColumn}},
		{descr: "unknown source", source: "bar.js", line: 1, column: 0, want: GeneratedPosition{}},
	}

	for _, test := range tests {
		t.Run(test.descr, func(t *testing.T) {
			got, err := c.GeneratedPositionFor(test.source, test.line, test.column, test.bias)
			if err != nil {
				t.Fatalf("Got: GeneratedPositionFor() returned error: %s. Want: no error.", err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("GeneratedPositionFor(%q, %d, %d, %v) returned diff (-want,+got):\n%s", test.source, test.line, test.column, test.bias, diff)
			}
		})
	}
}

func TestAllGeneratedPositionsFor(t *testing.T) {
	// Columns 0 and 5 of line 1 and column 0 of line 2 all map to foo.js 1:0,
	// columns 10 and 15 of line 2 map to foo.js 1:1 and 1:2.
	c := testingx.Must[Consumer](t)(NewConsumer([]byte(`{"version":3,"sources":["foo.js"],"names":[],"mappings":"AAAA,KAAA;AAAA,UAAC,KAAC"}`)))

	tests := []struct {
		descr  string
		source string
		line   int
		column int
		want   []GeneratedPosition
	}{
		{
			descr: "exact column", source: "foo.js", line: 1, column: 0,
			want: []GeneratedPosition{{1, 0, NoColumn}, {1, 5, NoColumn}, {2, 0, NoColumn}},
		}, {
			descr: "single match", source: "foo.js", line: 1, column: 2,
			want: []GeneratedPosition{{2, 15, NoColumn}},
		}, {
			descr: "any column", source: "foo.js", line: 1, column: AnyColumn,
			want: []GeneratedPosition{{1, 0, NoColumn}, {1, 5, NoColumn}, {2, 0, NoColumn}, {2, 10, NoColumn}, {2, 15, NoColumn}},
		}, {
			descr: "past the line", source: "foo.js", line: 1, column: 3,
		}, {
			descr: "unmapped line", source: "foo.js", line: 2, column: AnyColumn,
		}, {
			descr: "unknown source", source: "bar.js", line: 1, column: 0,
		},
	}

	for _, test := range tests {
		t.Run(test.descr, func(t *testing.T) {
			got, err := c.AllGeneratedPositionsFor(test.source, test.line, test.column)
			if err != nil {
				t.Fatalf("Got: AllGeneratedPositionsFor() returned error: %s. Want: no error.", err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("AllGeneratedPositionsFor(%q, %d, %d) returned diff (-want,+got):\n%s", test.source, test.line, test.column, diff)
			}
		})
	}
}

func TestComputeColumnSpans(t *testing.T) {
	c := testingx.Must[Consumer](t)(NewConsumer([]byte(`{"version":3,"sources":["foo.js"],"names":[],"mappings":"AAAA,KAAA;AAAA"}`)))
	if err := c.ComputeColumnSpans(); err != nil {
		t.Fatalf("Got: ComputeColumnSpans() returned error: %s. Want: no error.", err)
	}
	got := testingx.Must[[]GeneratedPosition](t)(c.AllGeneratedPositionsFor("foo.js", 1, 0))
	want := []GeneratedPosition{{1, 0, 4}, {1, 5, Unbounded}, {2, 0, Unbounded}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AllGeneratedPositionsFor() after ComputeColumnSpans() returned diff (-want,+got):\n%s", diff)
	}
}

func TestEachMapping(t *testing.T) {
	// Column 0 maps to b.js 1:0 named "x", column 2 maps to a.js 1:0.
	c := testingx.Must[Consumer](t)(NewConsumer([]byte(`{"version":3,"sources":["a.js","b.js"],"names":["x"],"mappings":"ACAAA,EDAA"}`)))

	collect := func(order Order) []Mapping {
		var got []Mapping
		if err := c.EachMapping(order, func(m Mapping) { got = append(got, m) }); err != nil {
			t.Fatalf("Got: EachMapping() returned error: %s. Want: no error.", err)
		}
		return got
	}

	generated := []Mapping{
		{GeneratedLine: 1, GeneratedColumn: 0, Source: "b.js", OriginalLine: 1, OriginalColumn: 0, Name: "x"},
		{GeneratedLine: 1, GeneratedColumn: 2, Source: "a.js", OriginalLine: 1, OriginalColumn: 0},
	}
	if diff := cmp.Diff(generated, collect(GeneratedOrder)); diff != "" {
		t.Errorf("EachMapping(GeneratedOrder) returned diff (-want,+got):\n%s", diff)
	}
	original := []Mapping{generated[1], generated[0]}
	if diff := cmp.Diff(original, collect(OriginalOrder)); diff != "" {
		t.Errorf("EachMapping(OriginalOrder) returned diff (-want,+got):\n%s", diff)
	}
}

func TestInvalidPosition(t *testing.T) {
	c := testingx.Must[Consumer](t)(NewConsumer([]byte(biasMap)))

	queries := map[string]func() error{
		"original line 0": func() error {
			_, err := c.OriginalPositionFor(0, 0, GreatestLowerBound)
			return err
		},
		"original column -1": func() error {
			_, err := c.OriginalPositionFor(1, -1, GreatestLowerBound)
			return err
		},
		"generated line 0": func() error {
			_, err := c.GeneratedPositionFor("foo.js", 0, 0, GreatestLowerBound)
			return err
		},
		"all line 0": func() error {
			_, err := c.AllGeneratedPositionsFor("foo.js", 0, AnyColumn)
			return err
		},
		"all column -2": func() error {
			_, err := c.AllGeneratedPositionsFor("foo.js", 1, -2)
			return err
		},
		"scope line 0": func() error {
			_, err := c.ScopeAt(0, 0)
			return err
		},
	}

	for descr, query := range queries {
		t.Run(descr, func(t *testing.T) {
			if err := query(); !errors.Is(err, ErrInvalidPosition) {
				t.Errorf("Got: error %v. Want: %v.", err, ErrInvalidPosition)
			}
		})
	}
}

func TestNewConsumerErrors(t *testing.T) {
	tests := []struct {
		descr string
		input string
		want  error
	}{
		{descr: "version 2", input: `{"version":2,"sources":[],"names":[],"mappings":""}`, want: ErrUnsupportedVersion},
		{descr: "missing mappings", input: `{"version":3,"sources":[],"names":[]}`, want: ErrMissingField},
		{descr: "garbage", input: `source map`, want: ErrFormat},
	}

	for _, test := range tests {
		t.Run(test.descr, func(t *testing.T) {
			_, err := NewConsumer([]byte(test.input))
			if !errors.Is(err, test.want) {
				t.Errorf("Got: NewConsumer() returned error: %v. Want: %v.", err, test.want)
			}
		})
	}
}

func TestLazyParsing(t *testing.T) {
	t.Run("memoized", func(t *testing.T) {
		c := testingx.Must[Consumer](t)(NewConsumer([]byte(biasMap))).(*BasicConsumer)
		if c.index != nil {
			t.Fatalf("Got: mappings parsed on construction. Want: parsed on first query.")
		}
		first := testingx.Must[OriginalPosition](t)(c.OriginalPositionFor(1, 5, GreatestLowerBound))
		ix := c.index
		second := testingx.Must[OriginalPosition](t)(c.OriginalPositionFor(1, 5, GreatestLowerBound))
		if c.index != ix {
			t.Errorf("Got: mappings parsed again on second query. Want: cached index.")
		}
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("Repeated query returned diff (-first,+second):\n%s", diff)
		}
	})

	t.Run("malformed mappings", func(t *testing.T) {
		// Construction succeeds, the error surfaces on every query.
		c := testingx.Must[Consumer](t)(NewConsumer([]byte(`{"version":3,"sources":["foo.js"],"names":[],"mappings":"AA!A"}`)))
		for i := 0; i < 2; i++ {
			if _, err := c.OriginalPositionFor(1, 0, GreatestLowerBound); !errors.Is(err, ErrFormat) {
				t.Errorf("Got: query %d returned error %v. Want: %v.", i, err, ErrFormat)
			}
		}
		if err := c.EachMapping(GeneratedOrder, func(Mapping) {}); !errors.Is(err, ErrFormat) {
			t.Errorf("Got: EachMapping() returned error %v. Want: %v.", err, ErrFormat)
		}
	})
}

func TestSourceRoot(t *testing.T) {
	c := testingx.Must[Consumer](t)(NewConsumer([]byte(`{
		"version": 3,
		"sourceRoot": "http://example.com/src",
		"sources": ["./foo.js"],
		"names": [],
		"mappings": "AAAA",
		"sourcesContent": ["var foo;"]
	}`)))

	if diff := cmp.Diff([]string{"http://example.com/src/foo.js"}, c.Sources()); diff != "" {
		t.Errorf("Sources() returned diff (-want,+got):\n%s", diff)
	}

	orig := testingx.Must[OriginalPosition](t)(c.OriginalPositionFor(1, 0, GreatestLowerBound))
	if orig.Source != "http://example.com/src/foo.js" {
		t.Errorf("Got: OriginalPositionFor().Source = %q. Want: %q.", orig.Source, "http://example.com/src/foo.js")
	}

	for _, source := range []string{"http://example.com/src/foo.js", "foo.js"} {
		gen := testingx.Must[GeneratedPosition](t)(c.GeneratedPositionFor(source, 1, 0, GreatestLowerBound))
		if !gen.IsValid() {
			t.Errorf("Got: GeneratedPositionFor(%q) found nothing. Want: 1:0.", source)
		}
		content, err := c.SourceContentFor(source)
		if err != nil || content != "var foo;" {
			t.Errorf("Got: SourceContentFor(%q) = %q, %v. Want: %q, no error.", source, content, err, "var foo;")
		}
	}
}

func TestSourceContent(t *testing.T) {
	tests := []struct {
		descr  string
		input  string
		source string
		want   string
	}{
		{
			descr:  "plain",
			input:  `{"version":3,"sources":["a.js","b.js"],"names":[],"mappings":"","sourcesContent":["a",null]}`,
			source: "a.js",
			want:   "a",
		}, {
			descr:  "file root outside of the root",
			input:  `{"version":3,"sourceRoot":"file:///src","sources":["/other/foo.js"],"names":[],"mappings":"","sourcesContent":["foo"]}`,
			source: "file:///other/foo.js",
			want:   "foo",
		}, {
			descr:  "host only root",
			input:  `{"version":3,"sourceRoot":"http://example.com/","sources":["/foo.js"],"names":[],"mappings":"","sourcesContent":["foo"]}`,
			source: "http://example.com/foo.js",
			want:   "foo",
		},
	}

	for _, test := range tests {
		t.Run(test.descr, func(t *testing.T) {
			c := testingx.Must[Consumer](t)(NewConsumer([]byte(test.input)))
			got, err := c.SourceContentFor(test.source)
			if err != nil {
				t.Fatalf("Got: SourceContentFor(%q) returned error: %s. Want: no error.", test.source, err)
			}
			if got != test.want {
				t.Errorf("Got: SourceContentFor(%q) = %q. Want: %q.", test.source, got, test.want)
			}
		})
	}
}

func TestSourceContentMissing(t *testing.T) {
	c := testingx.Must[Consumer](t)(NewConsumer([]byte(`{"version":3,"sources":["a.js","b.js"],"names":[],"mappings":"","sourcesContent":["a",null]}`)))

	if c.HasContentsOfAllSources() {
		t.Errorf("Got: HasContentsOfAllSources() = true. Want: false.")
	}
	for _, source := range []string{"b.js", "c.js"} {
		if _, err := c.SourceContentFor(source); !errors.Is(err, ErrSourceNotFound) {
			t.Errorf("Got: SourceContentFor(%q) returned error %v. Want: %v.", source, err, ErrSourceNotFound)
		}
		if _, ok := c.SourceContent(source); ok {
			t.Errorf("Got: SourceContent(%q) found content. Want: none.", source)
		}
	}

	full := testingx.Must[Consumer](t)(NewConsumer([]byte(`{"version":3,"sources":["a.js"],"names":[],"mappings":"","sourcesContent":["a"]}`)))
	if !full.HasContentsOfAllSources() {
		t.Errorf("Got: HasContentsOfAllSources() = false. Want: true.")
	}
}
