package sourcemap

import (
	"fmt"
	"slices"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/LongJohnCoder/source-map/internal/arrayset"
	"github.com/LongJohnCoder/source-map/internal/env"
	"github.com/LongJohnCoder/source-map/internal/mapping"
)

// BasicConsumer is a consumer of a single, non-indexed source map.
//
// Mappings and the environment are parsed on first use and cached for the
// lifetime of the consumer.
type BasicConsumer struct {
	file       string
	sourceRoot string
	sources    *arrayset.Set
	names      *arrayset.Set
	contents   []*string
	mappings   string
	env        string

	index    *index
	indexErr error

	global    *Scope
	globalErr error
}

var _ Consumer = (*BasicConsumer)(nil)

func newBasicConsumer(raw *RawMap) (*BasicConsumer, error) {
	if raw.Version != SupportedVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, raw.Version)
	}
	if raw.Sources == nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingField, "sources")
	}

	// Some producers write "./foo.js" instead of "foo.js".
	sources := make([]string, len(raw.Sources))
	for i, s := range raw.Sources {
		sources[i] = normalizePath(s)
	}

	// Duplicates are kept so that the indices used by the mappings stay valid.
	return &BasicConsumer{
		file:       raw.File,
		sourceRoot: raw.SourceRoot,
		sources:    arrayset.FromSlice(sources, true),
		names:      arrayset.FromSlice(raw.Names, true),
		contents:   slices.Clone(raw.SourcesContent),
		mappings:   raw.Mappings,
		env:        raw.Env,
	}, nil
}

// File implements Consumer.
func (c *BasicConsumer) File() string { return c.file }

// SourceRoot implements Consumer.
func (c *BasicConsumer) SourceRoot() string { return c.sourceRoot }

// Sources implements Consumer.
func (c *BasicConsumer) Sources() []string {
	sources := c.sources.Slice()
	if c.sourceRoot != "" {
		for i, s := range sources {
			sources[i] = joinPath(c.sourceRoot, s)
		}
	}
	return sources
}

// parsed returns the index of the map's mappings, decoding them on first use.
func (c *BasicConsumer) parsed() (*index, error) {
	if c.index != nil || c.indexErr != nil {
		return c.index, c.indexErr
	}
	start := time.Now()
	generated, err := mapping.Decode(c.mappings, c.sources.Len(), c.names.Len())
	if err != nil {
		c.indexErr = fmt.Errorf("failed to parse mappings: %w", err)
		return nil, c.indexErr
	}
	c.index = newIndex(c.sourceRoot, c.sources, c.names, generated)
	log.Debugf("Parsed %d mappings of %q in %v.", len(generated), c.file, time.Since(start))
	return c.index, nil
}

// OriginalPositionFor implements Consumer.
func (c *BasicConsumer) OriginalPositionFor(line, column int, bias Bias) (OriginalPosition, error) {
	if err := checkPosition(line, column); err != nil {
		return OriginalPosition{}, err
	}
	ix, err := c.parsed()
	if err != nil {
		return OriginalPosition{}, err
	}
	return ix.originalPositionFor(line, column, bias), nil
}

// GeneratedPositionFor implements Consumer.
func (c *BasicConsumer) GeneratedPositionFor(source string, line, column int, bias Bias) (GeneratedPosition, error) {
	if err := checkPosition(line, column); err != nil {
		return GeneratedPosition{}, err
	}
	ix, err := c.parsed()
	if err != nil {
		return GeneratedPosition{}, err
	}
	return ix.generatedPositionFor(source, line, column, bias), nil
}

// AllGeneratedPositionsFor implements Consumer.
func (c *BasicConsumer) AllGeneratedPositionsFor(source string, line, column int) ([]GeneratedPosition, error) {
	if err := checkOriginalLine(line, column); err != nil {
		return nil, err
	}
	ix, err := c.parsed()
	if err != nil {
		return nil, err
	}
	return ix.allGeneratedPositionsFor(source, line, column), nil
}

// EachMapping implements Consumer.
func (c *BasicConsumer) EachMapping(order Order, f func(m Mapping)) error {
	ix, err := c.parsed()
	if err != nil {
		return err
	}
	ix.eachMapping(order, f)
	return nil
}

// ComputeColumnSpans implements Consumer.
func (c *BasicConsumer) ComputeColumnSpans() error {
	ix, err := c.parsed()
	if err != nil {
		return err
	}
	ix.computeColumnSpans()
	return nil
}

// HasContentsOfAllSources implements Consumer.
func (c *BasicConsumer) HasContentsOfAllSources() bool {
	if len(c.contents) < c.sources.Len() {
		return false
	}
	for _, content := range c.contents {
		if content == nil {
			return false
		}
	}
	return true
}

// SourceContentFor implements Consumer.
func (c *BasicConsumer) SourceContentFor(source string) (string, error) {
	if content, ok := c.SourceContent(source); ok {
		return content, nil
	}
	return "", fmt.Errorf("%w: %q", ErrSourceNotFound, source)
}

// SourceContent implements Consumer.
func (c *BasicConsumer) SourceContent(source string) (string, bool) {
	if c.contents == nil {
		return "", false
	}
	if c.sourceRoot != "" {
		source = relativePath(c.sourceRoot, source)
	}
	if content, ok := c.contentAt(source); ok {
		return content, true
	}
	if c.sourceRoot == "" {
		return "", false
	}
	root := parseURL(c.sourceRoot)
	if root == nil {
		return "", false
	}
	// Let file:// roots and host-only roots behave as if the sources were
	// served by a local web server.
	if root.Scheme == "file" {
		if content, ok := c.contentAt(strings.TrimPrefix(source, "file://")); ok {
			return content, true
		}
	}
	if root.Path == "" || root.Path == "/" {
		if content, ok := c.contentAt("/" + source); ok {
			return content, true
		}
	}
	return "", false
}

func (c *BasicConsumer) contentAt(source string) (string, bool) {
	idx, err := c.sources.IndexOf(source)
	if err != nil || idx >= len(c.contents) || c.contents[idx] == nil {
		return "", false
	}
	return *c.contents[idx], true
}

// GlobalScope implements Consumer.
func (c *BasicConsumer) GlobalScope() (*Scope, error) {
	if c.env == "" {
		return nil, nil
	}
	if c.global != nil || c.globalErr != nil {
		return c.global, c.globalErr
	}
	ix, err := c.parsed()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	records, err := env.Parse(c.env)
	if err != nil {
		c.globalErr = fmt.Errorf("failed to parse environment: %w", err)
		return nil, c.globalErr
	}
	b := &scopeBuilder{generated: ix.generated, names: c.names}
	global, err := b.global(records)
	if err != nil {
		c.globalErr = fmt.Errorf("invalid environment: %w", err)
		return nil, c.globalErr
	}
	c.global = global
	log.Debugf("Parsed environment of %q in %v.", c.file, time.Since(start))
	return c.global, nil
}

// ScopeAt implements Consumer.
func (c *BasicConsumer) ScopeAt(line, column int) (*Scope, error) {
	if err := checkPosition(line, column); err != nil {
		return nil, err
	}
	global, err := c.GlobalScope()
	if err != nil || global == nil {
		return nil, err
	}
	return global.innermost(line, column), nil
}
