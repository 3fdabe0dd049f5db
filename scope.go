package sourcemap

import (
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/LongJohnCoder/source-map/internal/arrayset"
	"github.com/LongJohnCoder/source-map/internal/env"
	"github.com/LongJohnCoder/source-map/internal/mapping"
	"github.com/LongJohnCoder/source-map/internal/scopetree"
)

// ScopeType is the kind of a lexical scope.
type ScopeType int

// Scope types. The zero value means the type is unknown.
const (
	ScopeBlock    ScopeType = env.ScopeBlock
	ScopeFunction ScopeType = env.ScopeFunction
)

func (t ScopeType) String() string {
	switch t {
	case ScopeBlock:
		return "block"
	case ScopeFunction:
		return "function"
	default:
		return "unknown"
	}
}

// BindingType is the kind of a variable binding.
type BindingType int

// Binding types. The zero value means the type is unknown.
const (
	BindingConst BindingType = env.BindingConst
	BindingLocal BindingType = env.BindingLocal
	BindingParam BindingType = env.BindingParam
)

func (t BindingType) String() string {
	switch t {
	case BindingConst:
		return "const"
	case BindingLocal:
		return "local"
	case BindingParam:
		return "param"
	default:
		return "unknown"
	}
}

// Scope is a lexical scope decoded from a map's environment. Its bounds are
// inclusive generated positions, each of which coincides with a mapping.
//
// Child scopes never overlap and are contained in their parent. The global
// scope has no bounds and contains everything.
type Scope struct {
	parent   *Scope
	typ      ScopeType
	name     string
	start    *mapping.Mapping
	end      *mapping.Mapping
	children *scopetree.Tree[*Scope]
	bindings []*Binding
}

func scopeBounds(s *Scope) (start, end *mapping.Mapping) { return s.start, s.end }

func newScope(parent *Scope) *Scope {
	return &Scope{parent: parent, children: scopetree.New(scopeBounds)}
}

// Parent returns the enclosing scope, or nil for the global scope.
func (s *Scope) Parent() *Scope { return s.parent }

// IsGlobal reports whether s is the root of the scope tree.
func (s *Scope) IsGlobal() bool { return s.parent == nil }

// Type of the scope.
func (s *Scope) Type() ScopeType { return s.typ }

// Name of the scope, or "" if it has none.
func (s *Scope) Name() string { return s.name }

// Start returns the first generated position of the scope.
func (s *Scope) Start() Position {
	if s.start == nil {
		return Position{}
	}
	return Position{Line: s.start.GeneratedLine, Column: s.start.GeneratedColumn}
}

// End returns the last generated position of the scope.
func (s *Scope) End() Position {
	if s.end == nil {
		return Position{}
	}
	return Position{Line: s.end.GeneratedLine, Column: s.end.GeneratedColumn}
}

// EachChildScope calls f for every direct child scope in generated order.
func (s *Scope) EachChildScope(f func(child *Scope)) {
	s.children.Walk(f)
}

// EachBinding calls f for every binding declared directly in the scope.
func (s *Scope) EachBinding(f func(b *Binding)) {
	for _, b := range s.bindings {
		f(b)
	}
}

// ChildScopeAt returns the direct child scope containing the generated
// position, or nil.
func (s *Scope) ChildScopeAt(line, column int) *Scope {
	child, _ := s.children.Search(line, column)
	return child
}

func (s *Scope) innermost(line, column int) *Scope {
	scope := s
	for {
		child := scope.ChildScopeAt(line, column)
		if child == nil {
			return scope
		}
		scope = child
	}
}

// WriteTo writes a human-readable dump of the scope, its bindings and its
// descendants.
func (s *Scope) WriteTo(w io.Writer) (int64, error) {
	buf := &strings.Builder{}
	s.dump(buf, "")
	n, err := io.WriteString(w, buf.String())
	return int64(n), err
}

func (s *Scope) dump(buf *strings.Builder, indent string) {
	if s.IsGlobal() {
		fmt.Fprintf(buf, "%sGlobal Scope\n", indent)
	} else {
		if s.name != "" {
			fmt.Fprintf(buf, "%sScope %s\n", indent, s.name)
		} else {
			fmt.Fprintf(buf, "%sScope\n", indent)
		}
		fmt.Fprintf(buf, "%s    type  = %v\n", indent, s.typ)
		fmt.Fprintf(buf, "%s    start = %v\n", indent, s.Start())
		fmt.Fprintf(buf, "%s    end   = %v\n", indent, s.End())
	}
	fmt.Fprintf(buf, "%s    Bindings:\n", indent)
	for _, b := range s.bindings {
		b.dump(buf, indent+"        ")
	}
	fmt.Fprintf(buf, "%s    Child Scopes:\n", indent)
	s.children.Walk(func(child *Scope) {
		child.dump(buf, indent+"        ")
	})
}

// Binding is a variable visible in a scope. Its value is a snippet of
// generated code which evaluates to the variable's value in that scope.
type Binding struct {
	typ   BindingType
	name  string
	value string
}

// Type of the binding.
func (b *Binding) Type() BindingType { return b.typ }

// Name of the variable in the original source.
func (b *Binding) Name() string { return b.name }

// Value is the generated code expression locating the variable's value.
func (b *Binding) Value() string { return b.value }

func (b *Binding) String() string {
	return fmt.Sprintf("%v %s = %s", b.typ, b.name, b.value)
}

func (b *Binding) dump(buf *strings.Builder, indent string) {
	fmt.Fprintf(buf, "%sBinding %s\n", indent, b.name)
	fmt.Fprintf(buf, "%s    type  = %v\n", indent, b.typ)
	fmt.Fprintf(buf, "%s    value = %s\n", indent, b.value)
}

// scopeBuilder turns decoded environment records into a scope tree. Scope
// boundaries are indices into the generated mappings, names and values are
// indices into the names table. Property values out of range are ignored.
type scopeBuilder struct {
	generated []*mapping.Mapping
	names     *arrayset.Set
}

func (b *scopeBuilder) global(records []*env.Record) (*Scope, error) {
	global := newScope(nil)
	if err := b.addChildren(global, records); err != nil {
		return nil, err
	}
	if err := global.children.Check(nil, nil); err != nil {
		return nil, err
	}
	return global, nil
}

func (b *scopeBuilder) addChildren(parent *Scope, records []*env.Record) error {
	for _, r := range records {
		switch r.Kind {
		case env.RecordScope:
			s, err := b.scope(parent, r)
			if err != nil {
				return err
			}
			if err := parent.children.Insert(s); err != nil {
				return err
			}
		case env.RecordBinding:
			binding, err := b.binding(r)
			if err != nil {
				return err
			}
			parent.bindings = append(parent.bindings, binding)
		default:
			log.Debugf("Skipping environment record of unknown kind %d.", r.Kind)
			// Nested records must still be well formed.
			if err := b.addChildren(newScope(parent), r.Children); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *scopeBuilder) scope(parent *Scope, r *env.Record) (*Scope, error) {
	s := newScope(parent)
	for _, p := range r.Props {
		switch p.ID {
		case env.PropertyType:
			if p.Value == env.ScopeBlock || p.Value == env.ScopeFunction {
				s.typ = ScopeType(p.Value)
			}
		case env.PropertyStart:
			if m := b.mappingAt(p.Value); m != nil {
				s.start = m
			}
		case env.PropertyEnd:
			if m := b.mappingAt(p.Value); m != nil {
				s.end = m
			}
		case env.PropertyName:
			if name, ok := b.name(p.Value); ok {
				s.name = name
			}
		}
	}

	if s.start == nil {
		return nil, fmt.Errorf("%w: scope record without start boundary", ErrIncompleteRecord)
	}
	if s.end == nil {
		return nil, fmt.Errorf("%w: scope record without end boundary", ErrIncompleteRecord)
	}
	if mapping.ComparePosition(s.start, s.end) > 0 {
		return nil, fmt.Errorf("%w: scope starts at %v and ends at %v", ErrBadScopeBoundaries, s.Start(), s.End())
	}

	if err := b.addChildren(s, r.Children); err != nil {
		return nil, err
	}
	if err := s.children.Check(s.start, s.end); err != nil {
		return nil, err
	}
	return s, nil
}

func (b *scopeBuilder) binding(r *env.Record) (*Binding, error) {
	binding := &Binding{}
	var hasName, hasValue bool
	for _, p := range r.Props {
		switch p.ID {
		case env.PropertyType:
			if p.Value == env.BindingConst || p.Value == env.BindingLocal || p.Value == env.BindingParam {
				binding.typ = BindingType(p.Value)
			}
		case env.PropertyName:
			if name, ok := b.name(p.Value); ok {
				binding.name, hasName = name, true
			}
		case env.PropertyValue:
			if value, ok := b.name(p.Value); ok {
				binding.value, hasValue = value, true
			}
		}
	}
	if !hasName {
		return nil, fmt.Errorf("%w: binding record without a name property", ErrIncompleteRecord)
	}
	if !hasValue {
		return nil, fmt.Errorf("%w: binding record %q without a value property", ErrIncompleteRecord, binding.name)
	}
	return binding, nil
}

func (b *scopeBuilder) mappingAt(idx int) *mapping.Mapping {
	if idx < 0 || idx >= len(b.generated) {
		log.Debugf("Ignoring scope boundary %d outside of [0, %d).", idx, len(b.generated))
		return nil
	}
	return b.generated[idx]
}

func (b *scopeBuilder) name(idx int) (string, bool) {
	name, err := b.names.At(idx)
	if err != nil {
		log.Debugf("Ignoring name reference: %v", err)
		return "", false
	}
	return name, true
}
