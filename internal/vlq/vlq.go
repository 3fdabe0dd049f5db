// Package vlq implements the base64 variable-length quantity encoding used by
// source map version 3.
//
// A signed integer is first folded into an unsigned one with the sign stored
// in the least significant bit. The result is split into 5-bit groups, least
// significant first. Every group except the last has the continuation bit
// (0x20) set, and each 6-bit digit is written using the standard base64
// alphabet.
package vlq

import (
	"fmt"

	"github.com/LongJohnCoder/source-map/internal/smerr"
)

const (
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

	shift        = 5
	base         = 1 << shift
	mask         = base - 1
	continuation = base
)

var digits [256]int8

func init() {
	for i := range digits {
		digits[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		digits[alphabet[i]] = int8(i)
	}
}

// Encode returns the base64 VLQ representation of v.
func Encode(v int) string {
	return string(Append(nil, v))
}

// Append appends the base64 VLQ representation of v to dst and returns the
// extended buffer.
func Append(dst []byte, v int) []byte {
	var u uint64
	if v < 0 {
		u = uint64(-int64(v))<<1 | 1
	} else {
		u = uint64(v) << 1
	}
	for {
		digit := u & mask
		u >>= shift
		if u > 0 {
			digit |= continuation
		}
		dst = append(dst, alphabet[digit])
		if u == 0 {
			return dst
		}
	}
}

// Decode reads a single base64 VLQ from s starting at index start. It returns
// the decoded value and the index of the first byte after it.
//
// Decoding fails with smerr.ErrMalformedVLQ if s ends before the terminating
// digit, or if it contains a byte outside of the base64 alphabet.
func Decode(s string, start int) (value int, next int, err error) {
	var (
		u    uint64
		bits uint
	)
	for i := start; ; i++ {
		if i >= len(s) {
			return 0, i, fmt.Errorf("%w: unexpected end of input at offset %d", smerr.ErrMalformedVLQ, i)
		}
		digit := digits[s[i]]
		if digit < 0 {
			return 0, i, fmt.Errorf("%w: invalid base64 digit %q at offset %d", smerr.ErrMalformedVLQ, s[i], i)
		}
		if bits >= 64 || uint64(digit&mask)>>(64-bits) != 0 {
			return 0, i, fmt.Errorf("%w: value at offset %d overflows", smerr.ErrMalformedVLQ, start)
		}
		u |= uint64(digit&mask) << bits
		if digit&continuation == 0 {
			next = i + 1
			break
		}
		bits += shift
	}

	magnitude := int(u >> 1)
	if u&1 == 1 {
		return -magnitude, next, nil
	}
	return magnitude, next, nil
}
