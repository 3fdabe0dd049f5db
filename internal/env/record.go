// Package env implements the codec for the "x_env" source map extension,
// which describes the lexical scopes and bindings visible in generated code.
//
// The encoding is a tree of records built from base64 VLQs. A record starts
// with its kind, followed by (property id, value) pairs. A record with nested
// records continues with RecordChildren, the children and a RecordDone; a
// record without children ends with RecordDone directly after its last
// property.
//
// Property values are stored relative to the last value written for the same
// property id anywhere in the stream.
//
// To save space, an encoder may emit abbreviation definitions, each assigning
// a small id to a (kind, property id list) shape. Records of that shape are
// then written as RecordAbbreviated, the abbreviation id and the bare property
// values.
//
// This package only deals with the record tree. Interpretation of properties,
// such as resolving scope boundaries to mappings, is up to the caller.
package env

import "fmt"

// Prop is a single property of a record, holding an absolute value.
type Prop struct {
	ID    Property
	Value int
}

// Record is a node of the environment tree. Records of unknown kinds are
// preserved by the parser so callers can skip them.
type Record struct {
	Kind     Kind
	Props    []Prop
	Children []*Record
}

// Lookup returns the value of the last occurrence of the property.
func (r *Record) Lookup(id Property) (int, bool) {
	for i := len(r.Props) - 1; i >= 0; i-- {
		if r.Props[i].ID == id {
			return r.Props[i].Value, true
		}
	}
	return 0, false
}

// Set appends the property to the record.
func (r *Record) Set(id Property, value int) *Record {
	r.Props = append(r.Props, Prop{ID: id, Value: value})
	return r
}

// Abbreviation is a shorthand for records of a given kind and property list.
type Abbreviation struct {
	ID    int
	Kind  Kind
	Props []Property
}

func (a Abbreviation) key() string {
	return fmt.Sprintf("%d:%v", a.Kind, a.Props)
}
