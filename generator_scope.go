package sourcemap

import (
	"fmt"

	"github.com/LongJohnCoder/source-map/internal/arrayset"
	"github.com/LongJohnCoder/source-map/internal/env"
	"github.com/LongJohnCoder/source-map/internal/mapping"
	"github.com/LongJohnCoder/source-map/internal/scopetree"
)

// ScopeArgs describe a lexical scope to add to a Generator. Start and End are
// inclusive generated positions, each of which must coincide with a mapping
// already added to the generator.
type ScopeArgs struct {
	Type  ScopeType
	Start Position
	End   Position
	Name  string
}

// BindingArgs describe a variable binding. Value is a generated code
// expression which evaluates to the variable's value.
type BindingArgs struct {
	Type  BindingType
	Name  string
	Value string
}

// GeneratorScope is a scope under construction.
type GeneratorScope struct {
	gen      *Generator
	parent   *GeneratorScope
	typ      ScopeType
	name     string
	start    *mapping.Mapping
	end      *mapping.Mapping
	children *scopetree.Tree[*GeneratorScope]
	bindings []*GeneratorBinding
}

func generatorScopeBounds(s *GeneratorScope) (start, end *mapping.Mapping) { return s.start, s.end }

// addScope creates a scope of g under parent. Both bounds are looked up among
// the mappings added so far, whether or not validation is skipped.
func addScope(g *Generator, parent *GeneratorScope, siblings *scopetree.Tree[*GeneratorScope], args ScopeArgs) (*GeneratorScope, error) {
	if err := checkPosition(args.Start.Line, args.Start.Column); err != nil {
		return nil, fmt.Errorf("scope start: %w", err)
	}
	if err := checkPosition(args.End.Line, args.End.Column); err != nil {
		return nil, fmt.Errorf("scope end: %w", err)
	}
	s := &GeneratorScope{
		gen:      g,
		parent:   parent,
		typ:      args.Type,
		name:     args.Name,
		start:    mapping.New(args.Start.Line, args.Start.Column),
		end:      mapping.New(args.End.Line, args.End.Column),
		children: scopetree.New(generatorScopeBounds),
	}
	snapshot := g.mappings.Snapshot()
	if _, err := boundaryIndex(snapshot, s.start); err != nil {
		return nil, fmt.Errorf("scope start: %w", err)
	}
	if _, err := boundaryIndex(snapshot, s.end); err != nil {
		return nil, fmt.Errorf("scope end: %w", err)
	}
	if err := siblings.Insert(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Parent returns the enclosing scope, or nil for a top-level scope.
func (s *GeneratorScope) Parent() *GeneratorScope { return s.parent }

// Type of the scope.
func (s *GeneratorScope) Type() ScopeType { return s.typ }

// Name of the scope.
func (s *GeneratorScope) Name() string { return s.name }

// Start returns the first generated position of the scope.
func (s *GeneratorScope) Start() Position {
	return Position{Line: s.start.GeneratedLine, Column: s.start.GeneratedColumn}
}

// End returns the last generated position of the scope.
func (s *GeneratorScope) End() Position {
	return Position{Line: s.end.GeneratedLine, Column: s.end.GeneratedColumn}
}

// AddScope adds a nested scope.
func (s *GeneratorScope) AddScope(args ScopeArgs) (*GeneratorScope, error) {
	return addScope(s.gen, s, s.children, args)
}

// AddBinding adds a binding declared in the scope.
func (s *GeneratorScope) AddBinding(args BindingArgs) (*GeneratorBinding, error) {
	b, err := newGeneratorBinding(args)
	if err != nil {
		return nil, err
	}
	s.bindings = append(s.bindings, b)
	return b, nil
}

// Finish validates the scope and all of its descendants: the start must not
// be after the end, and child scopes must be pairwise disjoint and lie within
// their parent.
func (s *GeneratorScope) Finish() error {
	if mapping.ComparePosition(s.start, s.end) > 0 {
		return fmt.Errorf("%w: scope %q starts at %v and ends at %v", ErrBadScopeBoundaries, s.name, s.Start(), s.End())
	}
	var err error
	s.children.Walk(func(child *GeneratorScope) {
		if err == nil {
			err = child.Finish()
		}
	})
	if err != nil {
		return err
	}
	return s.children.Check(s.start, s.end)
}

// GeneratorBinding is a binding added to a Generator.
type GeneratorBinding struct {
	typ   BindingType
	name  string
	value string
}

func newGeneratorBinding(args BindingArgs) (*GeneratorBinding, error) {
	if args.Name == "" {
		return nil, fmt.Errorf("%w: binding without a name", ErrIncompleteRecord)
	}
	if args.Value == "" {
		return nil, fmt.Errorf("%w: binding %q without a value", ErrIncompleteRecord, args.Name)
	}
	return &GeneratorBinding{typ: args.Type, name: args.Name, value: args.Value}, nil
}

// Type of the binding.
func (b *GeneratorBinding) Type() BindingType { return b.typ }

// Name of the variable.
func (b *GeneratorBinding) Name() string { return b.name }

// Value of the binding.
func (b *GeneratorBinding) Value() string { return b.value }

// envEncoder turns generator scopes and bindings into environment records,
// resolving boundaries against the serialized mappings and interning strings
// into the serialized names.
type envEncoder struct {
	snapshot []*mapping.Mapping
	names    *arrayset.Set
}

func envRecords(bindings []*GeneratorBinding, scopes *scopetree.Tree[*GeneratorScope], snapshot []*mapping.Mapping, names *arrayset.Set) ([]*env.Record, error) {
	e := &envEncoder{snapshot: snapshot, names: names}
	return e.records(bindings, scopes)
}

func (e *envEncoder) records(bindings []*GeneratorBinding, scopes *scopetree.Tree[*GeneratorScope]) ([]*env.Record, error) {
	var records []*env.Record
	for _, b := range bindings {
		records = append(records, e.binding(b))
	}
	var err error
	scopes.Walk(func(s *GeneratorScope) {
		if err != nil {
			return
		}
		var r *env.Record
		if r, err = e.scope(s); err == nil {
			records = append(records, r)
		}
	})
	return records, err
}

func (e *envEncoder) scope(s *GeneratorScope) (*env.Record, error) {
	start, err := boundaryIndex(e.snapshot, s.start)
	if err != nil {
		return nil, err
	}
	end, err := boundaryIndex(e.snapshot, s.end)
	if err != nil {
		return nil, err
	}

	r := &env.Record{Kind: env.RecordScope}
	if s.typ != 0 {
		r.Set(env.PropertyType, int(s.typ))
	}
	r.Set(env.PropertyStart, start).Set(env.PropertyEnd, end)
	if s.name != "" {
		r.Set(env.PropertyName, intern(e.names, s.name))
	}
	if r.Children, err = e.records(s.bindings, s.children); err != nil {
		return nil, err
	}
	return r, nil
}

func (e *envEncoder) binding(b *GeneratorBinding) *env.Record {
	r := &env.Record{Kind: env.RecordBinding}
	if b.typ != 0 {
		r.Set(env.PropertyType, int(b.typ))
	}
	return r.Set(env.PropertyName, intern(e.names, b.name)).
		Set(env.PropertyValue, intern(e.names, b.value))
}

// boundaryIndex returns the index of the first mapping at the generated
// position.
func boundaryIndex(snapshot []*mapping.Mapping, pos *mapping.Mapping) (int, error) {
	i := mapping.Search(pos, snapshot, mapping.ComparePosition, mapping.GreatestLowerBound)
	if i < 0 || mapping.ComparePosition(snapshot[i], pos) != 0 {
		return 0, fmt.Errorf("%w: %d:%d", ErrNoMatchingMapping, pos.GeneratedLine, pos.GeneratedColumn)
	}
	return i, nil
}
