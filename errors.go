package sourcemap

import "github.com/LongJohnCoder/source-map/internal/smerr"

// Error categories. Every error returned by this package wraps exactly one of
// them, so callers may test for a category with errors.Is.
var (
	ErrFormat     = smerr.ErrFormat
	ErrValidation = smerr.ErrValidation
	ErrLookup     = smerr.ErrLookup
)

// Format errors: the input isn't a source map this package can read.
var (
	ErrUnsupportedVersion = smerr.ErrUnsupportedVersion
	ErrMissingField       = smerr.ErrMissingField
	ErrMalformedVLQ       = smerr.ErrMalformedVLQ
	ErrMalformedSegment   = smerr.ErrMalformedSegment
	ErrUnsupportedFeature = smerr.ErrUnsupportedFeature
	ErrSectionOrder       = smerr.ErrSectionOrder
	ErrMalformedEnv       = smerr.ErrMalformedEnv
)

// Validation errors: data handed to a Generator, or decoded from an input, is
// inconsistent.
var (
	ErrInvalidMapping     = smerr.ErrInvalidMapping
	ErrScopeContainment   = smerr.ErrScopeContainment
	ErrNoMatchingMapping  = smerr.ErrNoMatchingMapping
	ErrIncompleteRecord   = smerr.ErrIncompleteRecord
	ErrInvalidPosition    = smerr.ErrInvalidPosition
	ErrMissingSourceFile  = smerr.ErrMissingSourceFile
	ErrBadScopeBoundaries = smerr.ErrBadScopeBoundaries
)

// Lookup errors.
var (
	ErrNotFound        = smerr.ErrNotFound
	ErrIndexOutOfRange = smerr.ErrIndexOutOfRange
	ErrDuplicateKey    = smerr.ErrDuplicateKey
	ErrSourceNotFound  = smerr.ErrSourceNotFound
)
