package sourcemap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// xssiPrefix may precede a source map served over HTTP to prevent it from
// being evaluated as a script.
const xssiPrefix = ")]}'"

// Version of a source map. Some producers write it as a string, which is
// accepted on input.
type Version int

// SupportedVersion is the only source map version this package reads and
// writes.
const SupportedVersion Version = 3

// UnmarshalJSON accepts both a number and a numeric string.
func (v *Version) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*v = Version(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: version must be a number, got %s", ErrUnsupportedVersion, b)
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, s)
	}
	*v = Version(n)
	return nil
}

// RawMap is the JSON form of a version 3 source map.
//
// A basic map carries Sources, Names, Mappings and the optional fields. An
// indexed map carries Sections instead.
type RawMap struct {
	Version        Version      `json:"version"`
	File           string       `json:"file,omitempty"`
	SourceRoot     string       `json:"sourceRoot,omitempty"`
	Sources        []string     `json:"sources"`
	Names          []string     `json:"names"`
	SourcesContent []*string    `json:"sourcesContent,omitempty"`
	Mappings       string       `json:"mappings"`
	Env            string       `json:"x_env,omitempty"`
	Sections       []RawSection `json:"sections,omitempty"`
}

// IsIndexed reports whether the map is composed of sections.
func (m RawMap) IsIndexed() bool {
	return m.Sections != nil
}

// MarshalJSON writes a basic map with all its required fields, or an indexed
// map with only the fields meaningful for it.
func (m RawMap) MarshalJSON() ([]byte, error) {
	if m.IsIndexed() {
		return json.Marshal(struct {
			Version  Version      `json:"version"`
			File     string       `json:"file,omitempty"`
			Sections []RawSection `json:"sections"`
		}{m.Version, m.File, m.Sections})
	}
	type plain RawMap
	out := plain(m)
	if out.Sources == nil {
		out.Sources = []string{}
	}
	if out.Names == nil {
		out.Names = []string{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a map, checking that the fields required by its kind
// are present. A missing "names" field is tolerated.
func (m *RawMap) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return fmt.Errorf("%w: %s", ErrFormat, err)
	}
	required := []string{"version", "sources", "mappings"}
	if _, ok := fields["sections"]; ok {
		required = []string{"version", "sections"}
	}
	for _, name := range required {
		if v, ok := fields[name]; !ok || bytes.Equal(v, []byte("null")) {
			return fmt.Errorf("%w: %q", ErrMissingField, name)
		}
	}

	type plain RawMap
	var out plain
	if err := json.Unmarshal(b, &out); err != nil {
		if isCategorized(err) {
			return err
		}
		return fmt.Errorf("%w: %s", ErrFormat, err)
	}
	*m = RawMap(out)
	return nil
}

// RawSection is one entry of an indexed map's "sections" list.
type RawSection struct {
	Offset RawOffset `json:"offset"`
	// URL references an external map. It isn't supported and is only decoded
	// to report a meaningful error.
	URL string  `json:"url,omitempty"`
	Map *RawMap `json:"map,omitempty"`
}

// UnmarshalJSON decodes a section, checking that it has an offset.
func (s *RawSection) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return fmt.Errorf("%w: section: %s", ErrFormat, err)
	}
	if _, ok := fields["offset"]; !ok {
		return fmt.Errorf("%w: section %q", ErrMissingField, "offset")
	}
	type plain RawSection
	var out plain
	if err := json.Unmarshal(b, &out); err != nil {
		return err
	}
	*s = RawSection(out)
	return nil
}

// RawOffset is the 0-based generated position a section starts at.
type RawOffset struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Parse decodes a JSON source map, ignoring a leading ")]}'" line.
func Parse(data []byte) (*RawMap, error) {
	data = bytes.TrimPrefix(data, []byte(xssiPrefix))
	m := &RawMap{}
	if err := json.Unmarshal(data, m); err != nil {
		if isCategorized(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrFormat, err)
	}
	return m, nil
}

func isCategorized(err error) bool {
	for _, category := range []error{ErrFormat, ErrValidation, ErrLookup} {
		if errors.Is(err, category) {
			return true
		}
	}
	return false
}
