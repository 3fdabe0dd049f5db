// Package smerr defines the error categories shared by the source map codec
// packages. Every specific sentinel wraps exactly one category, so callers can
// test for either with errors.Is.
package smerr

import (
	"errors"
	"fmt"
)

// Error categories.
var (
	// ErrFormat is the category of errors caused by a malformed or unsupported
	// source map input. Always fatal.
	ErrFormat = errors.New("source map format error")
	// ErrValidation is the category of errors caused by inconsistent data
	// supplied to a generator, or an input violating structural invariants.
	ErrValidation = errors.New("source map validation error")
	// ErrLookup is the category of errors caused by querying something the map
	// doesn't contain.
	ErrLookup = errors.New("source map lookup error")
)

// Format errors.
var (
	ErrUnsupportedVersion = fmt.Errorf("%w: unsupported version", ErrFormat)
	ErrMissingField       = fmt.Errorf("%w: missing required field", ErrFormat)
	ErrMalformedVLQ       = fmt.Errorf("%w: malformed base64 VLQ", ErrFormat)
	ErrMalformedSegment   = fmt.Errorf("%w: malformed mapping segment", ErrFormat)
	ErrUnsupportedFeature = fmt.Errorf("%w: unsupported feature", ErrFormat)
	ErrSectionOrder       = fmt.Errorf("%w: section offsets must be ordered and non-overlapping", ErrFormat)
	ErrMalformedEnv       = fmt.Errorf("%w: malformed environment record", ErrFormat)
)

// Validation errors.
var (
	ErrInvalidMapping     = fmt.Errorf("%w: invalid mapping", ErrValidation)
	ErrScopeContainment   = fmt.Errorf("%w: child scopes must be non-overlapping and contained in their parent", ErrValidation)
	ErrNoMatchingMapping  = fmt.Errorf("%w: scope boundary has no matching mapping", ErrValidation)
	ErrIncompleteRecord   = fmt.Errorf("%w: incomplete record", ErrValidation)
	ErrInvalidPosition    = fmt.Errorf("%w: invalid position", ErrValidation)
	ErrMissingSourceFile  = fmt.Errorf("%w: source file is required", ErrValidation)
	ErrBadScopeBoundaries = fmt.Errorf("%w: scope start must not be after its end", ErrValidation)
)

// Lookup errors.
var (
	ErrNotFound        = fmt.Errorf("%w: not found", ErrLookup)
	ErrIndexOutOfRange = fmt.Errorf("%w: index out of range", ErrLookup)
	ErrDuplicateKey    = fmt.Errorf("%w: duplicate key", ErrLookup)
	ErrSourceNotFound  = fmt.Errorf("%w: source is not in the source map", ErrLookup)
)
