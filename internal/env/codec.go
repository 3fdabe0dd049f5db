package env

import (
	"fmt"

	"github.com/LongJohnCoder/source-map/internal/smerr"
	"github.com/LongJohnCoder/source-map/internal/vlq"
)

// parseState is threaded through the recursive descent of a single Parse call.
type parseState struct {
	s             string
	pos           int
	lastValue     map[Property]int
	abbreviations map[int]Abbreviation
}

func (ps *parseState) next() (int, error) {
	v, next, err := vlq.Decode(ps.s, ps.pos)
	if err != nil {
		return 0, err
	}
	ps.pos = next
	return v, nil
}

func (ps *parseState) peek() (int, error) {
	v, _, err := vlq.Decode(ps.s, ps.pos)
	return v, err
}

// absolute converts a property value delta into an absolute value.
func (ps *parseState) absolute(id Property, delta int) int {
	v := ps.lastValue[id] + delta
	ps.lastValue[id] = v
	return v
}

// Parse decodes an environment string into its top-level records.
//
// Abbreviation definitions are consumed by the parser and don't appear in the
// result. Records of unknown kinds and unknown properties are kept as-is.
func Parse(s string) ([]*Record, error) {
	ps := &parseState{
		s:             s,
		lastValue:     map[Property]int{},
		abbreviations: map[int]Abbreviation{},
	}
	var records []*Record
	for ps.pos < len(s) {
		r, err := parseRecord(ps)
		if err != nil {
			return nil, err
		}
		if r != nil {
			records = append(records, r)
		}
	}
	return records, nil
}

// parseRecord parses the next record. It returns a nil record for
// abbreviation definitions.
func parseRecord(ps *parseState) (*Record, error) {
	start := ps.pos
	tag, err := ps.next()
	if err != nil {
		return nil, err
	}
	switch Kind(tag) {
	case RecordAbbreviationDefinition:
		return nil, parseAbbreviationDefinition(ps)
	case RecordAbbreviated:
		return parseAbbreviatedRecord(ps)
	case RecordDone, RecordChildren:
		return nil, fmt.Errorf("%w: unexpected %v tag at offset %d", smerr.ErrMalformedEnv, Kind(tag), start)
	default:
		return parseVerboseRecord(ps, Kind(tag))
	}
}

func parseAbbreviationDefinition(ps *parseState) error {
	id, err := ps.next()
	if err != nil {
		return err
	}
	if _, ok := ps.abbreviations[id]; ok {
		return fmt.Errorf("%w: duplicate abbreviation definition for id %d", smerr.ErrMalformedEnv, id)
	}
	kind, err := ps.next()
	if err != nil {
		return err
	}
	def := Abbreviation{ID: id, Kind: Kind(kind)}
	for {
		p, err := ps.next()
		if err != nil {
			return err
		}
		if Kind(p) == RecordDone {
			break
		}
		def.Props = append(def.Props, Property(p))
	}
	ps.abbreviations[id] = def
	return nil
}

func parseAbbreviatedRecord(ps *parseState) (*Record, error) {
	id, err := ps.next()
	if err != nil {
		return nil, err
	}
	def, ok := ps.abbreviations[id]
	if !ok {
		return nil, fmt.Errorf("%w: reference to undefined abbreviation %d", smerr.ErrMalformedEnv, id)
	}

	r := &Record{Kind: def.Kind}
	for _, p := range def.Props {
		delta, err := ps.next()
		if err != nil {
			return nil, err
		}
		r.Set(p, ps.absolute(p, delta))
	}

	tag, err := ps.next()
	if err != nil {
		return nil, err
	}
	switch Kind(tag) {
	case RecordChildren:
		if err := parseChildren(ps, r); err != nil {
			return nil, err
		}
	case RecordDone:
	default:
		return nil, fmt.Errorf("%w: expected children or done tag after abbreviated record, found %d", smerr.ErrMalformedEnv, tag)
	}
	return r, nil
}

func parseVerboseRecord(ps *parseState, kind Kind) (*Record, error) {
	r := &Record{Kind: kind}
	for {
		p, err := ps.next()
		if err != nil {
			return nil, err
		}
		switch Kind(p) {
		case RecordDone:
			return r, nil
		case RecordChildren:
			if err := parseChildren(ps, r); err != nil {
				return nil, err
			}
			return r, nil
		}
		delta, err := ps.next()
		if err != nil {
			return nil, err
		}
		r.Set(Property(p), ps.absolute(Property(p), delta))
	}
}

func parseChildren(ps *parseState, parent *Record) error {
	for {
		tag, err := ps.peek()
		if err != nil {
			return err
		}
		if Kind(tag) == RecordDone {
			_, err := ps.next()
			return err
		}
		child, err := parseRecord(ps)
		if err != nil {
			return err
		}
		if child != nil {
			parent.Children = append(parent.Children, child)
		}
	}
}

// serializeState is threaded through the recursive walk of a single Serialize
// call.
type serializeState struct {
	abbreviate    bool
	lastValue     map[Property]int
	abbreviations map[string]Abbreviation
	defined       []Abbreviation
}

func (ss *serializeState) relative(id Property, value int) int {
	delta := value - ss.lastValue[id]
	ss.lastValue[id] = value
	return delta
}

// ensureAbbreviation returns the id of the abbreviation for the record's
// shape, defining a new one if needed.
func (ss *serializeState) ensureAbbreviation(r *Record) int {
	def := Abbreviation{Kind: r.Kind, Props: make([]Property, len(r.Props))}
	for i, p := range r.Props {
		def.Props[i] = p.ID
	}
	key := def.key()
	if existing, ok := ss.abbreviations[key]; ok {
		return existing.ID
	}
	def.ID = len(ss.defined)
	ss.abbreviations[key] = def
	ss.defined = append(ss.defined, def)
	return def.ID
}

// Serialize encodes the records into an environment string. If abbreviate is
// true, record shapes are factored out into abbreviation definitions written
// at the start of the string.
//
// Serialize doesn't modify the records.
func Serialize(records []*Record, abbreviate bool) string {
	ss := &serializeState{
		abbreviate:    abbreviate,
		lastValue:     map[Property]int{},
		abbreviations: map[string]Abbreviation{},
	}
	var body []byte
	for _, r := range records {
		body = serializeRecord(ss, body, r)
	}

	var out []byte
	for _, def := range ss.defined {
		out = vlq.Append(out, int(RecordAbbreviationDefinition))
		out = vlq.Append(out, def.ID)
		out = vlq.Append(out, int(def.Kind))
		for _, p := range def.Props {
			out = vlq.Append(out, int(p))
		}
		out = vlq.Append(out, int(RecordDone))
	}
	return string(append(out, body...))
}

func serializeRecord(ss *serializeState, buf []byte, r *Record) []byte {
	if ss.abbreviate {
		buf = vlq.Append(buf, int(RecordAbbreviated))
		buf = vlq.Append(buf, ss.ensureAbbreviation(r))
		for _, p := range r.Props {
			buf = vlq.Append(buf, ss.relative(p.ID, p.Value))
		}
	} else {
		buf = vlq.Append(buf, int(r.Kind))
		for _, p := range r.Props {
			buf = vlq.Append(buf, int(p.ID))
			buf = vlq.Append(buf, ss.relative(p.ID, p.Value))
		}
	}

	if len(r.Children) > 0 {
		buf = vlq.Append(buf, int(RecordChildren))
		for _, child := range r.Children {
			buf = serializeRecord(ss, buf, child)
		}
	}
	return vlq.Append(buf, int(RecordDone))
}
