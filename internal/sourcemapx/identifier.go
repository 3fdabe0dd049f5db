package sourcemapx

import (
	"fmt"

	"github.com/LongJohnCoder/source-map"
)

// Location is a position in an original source file. Line is 1-based, Column
// is 0-based.
type Location struct {
	Source string
	Line   int
	Column int
}

// IsValid reports whether the location refers to a source position.
func (l Location) IsValid() bool {
	return l.Source != "" && l.Line > 0
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.Source, l.Line, l.Column)
}

// EncodeHint returns the location as an encoded hint.
func (l Location) EncodeHint() string { return EncodeHint(l) }

// Identifier represents a generated code identifier with a the associated
// original identifier information, which can be used to produce a source map.
//
// This allows a debugger to show the original name of a renamed or minified
// function or variable.
type Identifier struct {
	Name         string   // Identifier to use in the generated code.
	OriginalName string   // Original identifier name.
	Original     Location // Original identifier position.
}

// String returns generated code identifier name.
func (i Identifier) String() string {
	return i.Name
}

// EncodeHint returns a string with an encoded source map hint. The hint can be
// inserted into the generated code to be later extracted by the Filter to
// produce a source map.
func (i Identifier) EncodeHint() string { return EncodeHint(i) }

// ScopeStart opens a lexical scope at the current output position.
type ScopeStart struct {
	Type sourcemap.ScopeType
	Name string
}

// ScopeEnd closes the innermost open scope at the current output position,
// which is the last position within the scope. The hint is written before the
// last character of the scope, so that a sibling scope may start right after.
type ScopeEnd struct{}

// Binding declares a variable in the innermost open scope, or in the global
// scope if none is open. Value is the generated code expression holding the
// variable's value.
type Binding struct {
	Type  sourcemap.BindingType
	Name  string
	Value string
}
