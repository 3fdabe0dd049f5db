// Package testingx provides helpers for use with the testing package.
package testingx

import "testing"

// Must provides a concise way to handle returned errors in tests that "should
// never happen".
//
// This function can be used in test case setup that can be presumed to be
// correct, but technically may return an error. This function MUST NOT be used
// to check for test case conditions themselves because it provides a generic,
// nondescript test error message.
//
//	c := testingx.Must[sourcemap.Consumer](t)(sourcemap.NewConsumer(data))
func Must[T any](t *testing.T) func(v T, err error) T {
	return func(v T, err error) T {
		if err != nil {
			t.Fatalf("Got: unexpected error: %s. Want: no error.", err)
		}
		return v
	}
}

// Panics calls f and returns the value it panicked with, failing the test if
// it didn't panic.
//
//	err := testingx.Panics(t, func() { ReadHint(nil) })
func Panics(t *testing.T, f func()) (recovered any) {
	t.Helper()
	defer func() {
		recovered = recover()
		if recovered == nil {
			t.Fatalf("Got: no panic. Want: a panic.")
		}
	}()
	f()
	return nil
}
