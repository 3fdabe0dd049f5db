package sourcemap

import (
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/LongJohnCoder/source-map/internal/arrayset"
	"github.com/LongJohnCoder/source-map/internal/env"
	"github.com/LongJohnCoder/source-map/internal/mapping"
	"github.com/LongJohnCoder/source-map/internal/scopetree"
)

// GeneratorOptions configure a new Generator.
type GeneratorOptions struct {
	// File is the name of the generated file.
	File string
	// SourceRoot is prepended to every source path by consumers of the map.
	SourceRoot string
	// SkipValidation disables the checks of AddMapping and the scope
	// containment checks done by ToJSON, for trusted callers.
	SkipValidation bool
	// Abbreviations enables the compact encoding of the environment.
	Abbreviations bool
}

// MappingArgs describe a mapping to add to a Generator. A mapping has either
// only a generated position, or a generated position, an original position
// and a source, plus optionally a name.
type MappingArgs struct {
	Generated Position
	Original  Position
	// Source is relative to the generator's source root.
	Source string
	Name   string
}

// Generator builds a source map incrementally.
type Generator struct {
	file           string
	sourceRoot     string
	skipValidation bool
	abbreviations  bool

	sources  *arrayset.Set
	names    *arrayset.Set
	mappings *mapping.List
	contents map[string]string

	scopes   *scopetree.Tree[*GeneratorScope]
	bindings []*GeneratorBinding
}

// NewGenerator returns an empty generator.
func NewGenerator(opts GeneratorOptions) *Generator {
	return &Generator{
		file:           opts.File,
		sourceRoot:     opts.SourceRoot,
		skipValidation: opts.SkipValidation,
		abbreviations:  opts.Abbreviations,
		sources:        arrayset.New(),
		names:          arrayset.New(),
		mappings:       mapping.NewList(),
		scopes:         scopetree.New(generatorScopeBounds),
	}
}

// NewGeneratorFromConsumer returns a generator holding the mappings and the
// source contents of an existing map.
func NewGeneratorFromConsumer(c Consumer) (*Generator, error) {
	root := c.SourceRoot()
	g := NewGenerator(GeneratorOptions{File: c.File(), SourceRoot: root})

	var addErr error
	err := c.EachMapping(GeneratedOrder, func(m Mapping) {
		if addErr != nil {
			return
		}
		args := MappingArgs{Generated: Position{Line: m.GeneratedLine, Column: m.GeneratedColumn}}
		if m.HasOriginal() {
			args.Source = m.Source
			if root != "" {
				args.Source = relativePath(root, args.Source)
			}
			args.Original = Position{Line: m.OriginalLine, Column: m.OriginalColumn}
			args.Name = m.Name
		}
		addErr = g.AddMapping(args)
	})
	if err != nil {
		return nil, err
	}
	if addErr != nil {
		return nil, addErr
	}

	for _, source := range c.Sources() {
		if content, ok := c.SourceContent(source); ok {
			g.SetSourceContent(source, content)
		}
	}
	return g, nil
}

// AddMapping adds a mapping to the map. Unless validation is disabled,
// arguments which don't describe a well-formed mapping fail with
// ErrInvalidMapping.
func (g *Generator) AddMapping(args MappingArgs) error {
	if !g.skipValidation {
		if err := validateMapping(args); err != nil {
			return err
		}
	}

	m := mapping.New(args.Generated.Line, args.Generated.Column)
	if args.Source != "" {
		m.Source = intern(g.sources, args.Source)
		m.OriginalLine = args.Original.Line
		m.OriginalColumn = args.Original.Column
		if args.Name != "" {
			m.Name = intern(g.names, args.Name)
		}
	}
	g.mappings.Add(m)
	return nil
}

func validateMapping(args MappingArgs) error {
	gen, orig := args.Generated, args.Original
	if gen.Line > 0 && gen.Column >= 0 {
		if orig == (Position{}) && args.Source == "" && args.Name == "" {
			return nil
		}
		if orig.Line > 0 && orig.Column >= 0 && args.Source != "" {
			return nil
		}
	}
	return fmt.Errorf("%w: generated %v, original %v, source %q, name %q", ErrInvalidMapping, gen, orig, args.Source, args.Name)
}

// SetSourceContent embeds the content of a source file into the map.
func (g *Generator) SetSourceContent(source, content string) {
	if g.sourceRoot != "" {
		source = relativePath(g.sourceRoot, source)
	}
	if g.contents == nil {
		g.contents = map[string]string{}
	}
	g.contents[source] = content
}

// RemoveSourceContent removes the embedded content of a source file.
func (g *Generator) RemoveSourceContent(source string) {
	if g.sourceRoot != "" {
		source = relativePath(g.sourceRoot, source)
	}
	delete(g.contents, source)
	if len(g.contents) == 0 {
		g.contents = nil
	}
}

// ApplySourceMap rewrites the mappings into sourceFile using the map of that
// file, so that they point into the sources it was generated from. Mappings
// which the applied map doesn't resolve are left as they are.
//
// If sourceFile is empty, the applied map's file is used. If sourceMapPath is
// non-empty, the applied map's sources are resolved relative to it. The
// source contents embedded in the applied map are copied.
func (g *Generator) ApplySourceMap(c Consumer, sourceFile, sourceMapPath string) error {
	if sourceFile == "" {
		sourceFile = c.File()
		if sourceFile == "" {
			return fmt.Errorf("%w: neither a source file nor the applied map's file was given", ErrMissingSourceFile)
		}
	}
	if g.sourceRoot != "" {
		sourceFile = relativePath(g.sourceRoot, sourceFile)
	}
	resolve := func(source string) string {
		if sourceMapPath != "" {
			source = joinPath(sourceMapPath, source)
		}
		if g.sourceRoot != "" {
			source = relativePath(g.sourceRoot, source)
		}
		return source
	}

	// Applying the map may both add and remove sources and names, so the
	// tables are rebuilt from the rewritten mappings.
	sources, names := arrayset.New(), arrayset.New()
	var queryErr error
	g.mappings.UnsortedForEach(func(m *mapping.Mapping) {
		if !m.HasOriginal() {
			return
		}
		source := g.sources.MustAt(m.Source)
		name := ""
		if m.HasName() {
			name = g.names.MustAt(m.Name)
		}

		if source == sourceFile && queryErr == nil {
			orig, err := c.OriginalPositionFor(m.OriginalLine, m.OriginalColumn, GreatestLowerBound)
			if err != nil {
				queryErr = err
			} else if orig.IsValid() {
				source = resolve(orig.Source)
				m.OriginalLine = orig.Line
				m.OriginalColumn = orig.Column
				if orig.Name != "" {
					name = orig.Name
				}
			}
		}

		m.Source = intern(sources, source)
		m.Name = mapping.None
		if name != "" {
			m.Name = intern(names, name)
		}
	})
	if queryErr != nil {
		// The tables still match the mappings rewritten so far.
		g.sources, g.names = sources, names
		return fmt.Errorf("failed to apply source map of %q: %w", sourceFile, queryErr)
	}
	g.sources, g.names = sources, names

	for _, source := range c.Sources() {
		if content, ok := c.SourceContent(source); ok {
			g.SetSourceContent(resolve(source), content)
		}
	}
	return nil
}

// AddScope adds a top-level lexical scope. Both bounds must coincide with a
// mapping added before, otherwise ErrNoMatchingMapping is returned. A scope
// starting where a sibling starts is rejected with ErrScopeContainment.
func (g *Generator) AddScope(args ScopeArgs) (*GeneratorScope, error) {
	return addScope(g, nil, g.scopes, args)
}

// AddBinding adds a global binding.
func (g *Generator) AddBinding(args BindingArgs) (*GeneratorBinding, error) {
	b, err := newGeneratorBinding(args)
	if err != nil {
		return nil, err
	}
	g.bindings = append(g.bindings, b)
	return b, nil
}

// ToJSON returns the map built so far. The generator isn't modified and may
// be used further.
func (g *Generator) ToJSON() (*RawMap, error) {
	snapshot := g.mappings.Snapshot()
	// Scopes and bindings intern their strings into a copy of the names, so
	// that the mapping names keep their indices.
	names := arrayset.FromSlice(g.names.Slice(), false)

	environment, err := g.serializeEnv(snapshot, names)
	if err != nil {
		return nil, err
	}

	raw := &RawMap{
		Version:    SupportedVersion,
		File:       g.file,
		SourceRoot: g.sourceRoot,
		Sources:    g.sources.Slice(),
		Names:      names.Slice(),
		Mappings:   mapping.Encode(snapshot),
		Env:        environment,
	}
	if g.contents != nil {
		raw.SourcesContent = g.sourcesContent(raw.Sources)
	}
	log.Debugf("Serialized %d mappings, %d sources and %d names of %q (%d bytes of mappings, %d bytes of environment).",
		len(snapshot), len(raw.Sources), len(raw.Names), g.file, len(raw.Mappings), len(raw.Env))
	return raw, nil
}

func (g *Generator) sourcesContent(sources []string) []*string {
	out := make([]*string, len(sources))
	for i, source := range sources {
		if g.sourceRoot != "" {
			source = relativePath(g.sourceRoot, source)
		}
		if content, ok := g.contents[source]; ok {
			out[i] = &content
		}
	}
	return out
}

func (g *Generator) serializeEnv(snapshot []*mapping.Mapping, names *arrayset.Set) (string, error) {
	if len(g.bindings) == 0 && g.scopes.Len() == 0 {
		return "", nil
	}
	if !g.skipValidation {
		var err error
		g.scopes.Walk(func(s *GeneratorScope) {
			if err == nil {
				err = s.Finish()
			}
		})
		if err == nil {
			err = g.scopes.Check(nil, nil)
		}
		if err != nil {
			return "", err
		}
	}
	records, err := envRecords(g.bindings, g.scopes, snapshot, names)
	if err != nil {
		return "", err
	}
	return env.Serialize(records, g.abbreviations), nil
}

// MarshalJSON implements json.Marshaler.
func (g *Generator) MarshalJSON() ([]byte, error) {
	raw, err := g.ToJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(raw)
}

// String renders the map as JSON.
func (g *Generator) String() string {
	b, err := g.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<invalid source map: %v>", err)
	}
	return string(b)
}

// NewConsumerFromGenerator returns a consumer of the map built so far. The
// consumer doesn't share any mutable state with the generator.
func NewConsumerFromGenerator(g *Generator) (*BasicConsumer, error) {
	raw, err := g.ToJSON()
	if err != nil {
		return nil, err
	}
	c := &BasicConsumer{
		file:       raw.File,
		sourceRoot: raw.SourceRoot,
		sources:    arrayset.FromSlice(raw.Sources, true),
		names:      arrayset.FromSlice(raw.Names, true),
		contents:   raw.SourcesContent,
		mappings:   raw.Mappings,
		env:        raw.Env,
	}
	c.index = newIndex(c.sourceRoot, c.sources, c.names, mapping.Clone(g.mappings.Snapshot()))
	return c, nil
}
