package sourcemapx

import (
	"bytes"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	sourcemap "github.com/LongJohnCoder/source-map"
)

// Filter implements io.Writer which extracts source map hints from the written
// stream and records them in the Generator if it's not nil. Encoded hints are
// always filtered out of the output stream.
//
// Scopes opened and closed by hints are kept pending until Close, because a
// scope can only be added to the generator once both of its boundaries are
// known.
type Filter struct {
	Writer    io.Writer
	Generator *sourcemap.Generator

	line   int
	column int

	mapped map[sourcemap.Position]bool
	open   []*pendingScope
	scopes []*pendingScope
	global []sourcemap.BindingArgs
}

type pendingScope struct {
	args     sourcemap.ScopeArgs
	bindings []sourcemap.BindingArgs
	children []*pendingScope
}

// position returns the current generated position in the output stream.
func (f *Filter) position() sourcemap.Position {
	return sourcemap.Position{Line: f.line + 1, Column: f.column}
}

func (f *Filter) Write(p []byte) (n int, err error) {
	var n2 int
	for {
		i := FindHint(p)
		w := p
		if i != -1 {
			w = p[:i]
		}

		n2, err = f.Writer.Write(w)
		n += n2
		for {
			i := bytes.IndexByte(w, '\n')
			if i == -1 {
				f.column += len(w)
				break
			}
			f.line++
			f.column = 0
			w = w[i+1:]
		}

		if err != nil || i == -1 {
			return
		}
		h, length := ReadHint(p[i:])
		value, err := h.Unpack()
		if err != nil {
			return n, fmt.Errorf("failed to unpack source map hint: %w", err)
		}
		if err := f.apply(value); err != nil {
			return n, err
		}
		p = p[i+length:]
		n += length
	}
}

func (f *Filter) apply(value any) error {
	switch value := value.(type) {
	case Location:
		return f.addMapping(value, "")
	case Identifier:
		return f.addMapping(value.Original, value.OriginalName)
	case ScopeStart:
		s := &pendingScope{args: sourcemap.ScopeArgs{
			Type:  value.Type,
			Name:  value.Name,
			Start: f.position(),
		}}
		if len(f.open) == 0 {
			f.scopes = append(f.scopes, s)
		} else {
			parent := f.open[len(f.open)-1]
			parent.children = append(parent.children, s)
		}
		f.open = append(f.open, s)
	case ScopeEnd:
		if len(f.open) == 0 {
			return fmt.Errorf("scope end hint at %s without an open scope", f.position())
		}
		s := f.open[len(f.open)-1]
		s.args.End = f.position()
		f.open = f.open[:len(f.open)-1]
	case Binding:
		b := sourcemap.BindingArgs{Type: value.Type, Name: value.Name, Value: value.Value}
		if len(f.open) == 0 {
			f.global = append(f.global, b)
		} else {
			s := f.open[len(f.open)-1]
			s.bindings = append(s.bindings, b)
		}
	default:
		return fmt.Errorf("unexpected source map hint type: %T", value)
	}
	return nil
}

func (f *Filter) addMapping(original Location, name string) error {
	if f.Generator == nil {
		return nil
	}
	args := sourcemap.MappingArgs{Generated: f.position()}
	if original.IsValid() {
		args.Original = sourcemap.Position{Line: original.Line, Column: original.Column}
		args.Source = original.Source
		args.Name = name
	}
	if err := f.Generator.AddMapping(args); err != nil {
		return fmt.Errorf("failed to add mapping for %s: %w", original, err)
	}
	if f.mapped == nil {
		f.mapped = map[sourcemap.Position]bool{}
	}
	f.mapped[args.Generated] = true
	return nil
}

// Close adds the scopes collected from the stream to the Generator. It fails
// if any scope was left open.
//
// Every scope boundary must coincide with a mapping, so boundaries nothing
// was mapped at get a mapping without an original position.
func (f *Filter) Close() error {
	if len(f.open) > 0 {
		return fmt.Errorf("%d scope(s) left open at %s", len(f.open), f.position())
	}
	if f.Generator == nil {
		return nil
	}

	var boundaries int
	var add func(scopes []*pendingScope) error
	add = func(scopes []*pendingScope) error {
		for _, s := range scopes {
			for _, pos := range []sourcemap.Position{s.args.Start, s.args.End} {
				if f.mapped[pos] {
					continue
				}
				if err := f.Generator.AddMapping(sourcemap.MappingArgs{Generated: pos}); err != nil {
					return fmt.Errorf("failed to map scope boundary %s: %w", pos, err)
				}
				if f.mapped == nil {
					f.mapped = map[sourcemap.Position]bool{}
				}
				f.mapped[pos] = true
				boundaries++
			}
			if err := add(s.children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := add(f.scopes); err != nil {
		return err
	}

	for _, b := range f.global {
		if _, err := f.Generator.AddBinding(b); err != nil {
			return fmt.Errorf("global binding %q: %w", b.Name, err)
		}
	}
	count, err := materialize(f.scopes, f.Generator.AddScope)
	if err != nil {
		return err
	}
	log.Debugf("Source map filter: %d scope(s), %d global binding(s), %d boundary mapping(s).", count, len(f.global), boundaries)
	return nil
}

// materialize adds the pending scopes top-down, using add to create each
// scope in its parent.
func materialize(scopes []*pendingScope, add func(sourcemap.ScopeArgs) (*sourcemap.GeneratorScope, error)) (int, error) {
	count := 0
	for _, s := range scopes {
		gs, err := add(s.args)
		if err != nil {
			return count, fmt.Errorf("scope %q at %s: %w", s.args.Name, s.args.Start, err)
		}
		count++
		for _, b := range s.bindings {
			if _, err := gs.AddBinding(b); err != nil {
				return count, fmt.Errorf("binding %q in scope %q: %w", b.Name, s.args.Name, err)
			}
		}
		n, err := materialize(s.children, gs.AddScope)
		count += n
		if err != nil {
			return count, err
		}
	}
	return count, nil
}
