// Package sourcemapx lets a code generator describe source mappings inline,
// in the code stream it writes, instead of keeping track of output positions
// itself.
//
// Hints are marked by the special `\b` (0x08) magic byte, followed by a
// variable-length sequence of bytes, which can be extracted from the byte
// slice using ReadHint() function.
//
// '\b' was chosen as a magic symbol because it would never occur unescaped in
// generated JavaScript or CSS, other than when explicitly inserted as a hint.
// See Hint type documentation for the details of the encoded format.
//
// A hint wraps one of the following values:
//
//   - Location: the current output position corresponds to a position in an
//     original source.
//   - Identifier: like Location, but also records the original name of the
//     identifier written next.
//   - ScopeStart and ScopeEnd: the current output position opens or closes a
//     lexical scope.
//   - Binding: a variable declared in the innermost open scope.
//
// Filter extracts the hints from the written stream and records them in a
// sourcemap.Generator. It also ensures that the encoded hints don't make it
// into the final output.
//
// Import and Export convert between the generator and the source maps of
// github.com/neelance/sourcemap, which older tools still produce.
package sourcemapx
