package sourcemapx

import (
	"fmt"

	neelance "github.com/neelance/sourcemap"

	sourcemap "github.com/LongJohnCoder/source-map"
)

// Import copies the mappings of a map read by github.com/neelance/sourcemap
// into a new generator. The file and source root of opts default to the ones
// of the map.
//
// The import is lossy: that decoder drops a final 1-field segment unless a
// separator follows it, so "AAAA,E" yields a single mapping while "AAAA,E;"
// yields two.
func Import(m *neelance.Map, opts sourcemap.GeneratorOptions) (g *sourcemap.Generator, err error) {
	if m.Version != 3 {
		return nil, fmt.Errorf("%w: %d", sourcemap.ErrUnsupportedVersion, m.Version)
	}
	if opts.File == "" {
		opts.File = m.File
	}
	if opts.SourceRoot == "" {
		opts.SourceRoot = m.SourceRoot
	}

	// Out of range source or name indices make the decoder panic.
	defer func() {
		if r := recover(); r != nil {
			g, err = nil, fmt.Errorf("%w: %v", sourcemap.ErrMalformedSegment, r)
		}
	}()
	decoded := m.DecodedMappings()

	g = sourcemap.NewGenerator(opts)
	for _, dm := range decoded {
		args := sourcemap.MappingArgs{
			Generated: sourcemap.Position{Line: dm.GeneratedLine, Column: dm.GeneratedColumn},
		}
		if dm.OriginalFile != "" {
			args.Original = sourcemap.Position{Line: dm.OriginalLine, Column: dm.OriginalColumn}
			args.Source = dm.OriginalFile
			args.Name = dm.OriginalName
		}
		if err := g.AddMapping(args); err != nil {
			return nil, fmt.Errorf("mapping at %s: %w", args.Generated, err)
		}
	}
	return g, nil
}

// Export converts the mappings of a consumer into a github.com/neelance/sourcemap
// map. Sources are written with the source root applied, since that format
// doesn't distinguish them. Scopes and source contents aren't representable
// and are dropped.
func Export(c sourcemap.Consumer) (*neelance.Map, error) {
	m := &neelance.Map{Version: 3, File: c.File()}
	err := c.EachMapping(sourcemap.GeneratedOrder, func(mp sourcemap.Mapping) {
		m.AddMapping(&neelance.Mapping{
			GeneratedLine:   mp.GeneratedLine,
			GeneratedColumn: mp.GeneratedColumn,
			OriginalFile:    mp.Source,
			OriginalLine:    mp.OriginalLine,
			OriginalColumn:  mp.OriginalColumn,
			OriginalName:    mp.Name,
		})
	})
	if err != nil {
		return nil, err
	}
	m.EncodeMappings()
	return m, nil
}
