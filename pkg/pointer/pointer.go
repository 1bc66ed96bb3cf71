// Copyright (c) 2026 Herdcount. All rights reserved.

/*
Package pointer provides utilities for working with pointers in Go.

Request schemas use pointer fields to tell "absent" apart from "zero", so
handlers lean on these helpers to apply defaults.

Key Functions:
  - To: Creates a pointer from a value literal.
  - Fallback: Safely dereferences a pointer, returning a fallback value if nil.
*/
package pointer

// To returns a pointer to the provided value.
// It is useful when you need to pass a primitive value to a function or struct field
// that expects a pointer (e.g. pointer.To(int64(3))).
func To[T any](v T) *T {
	return &v
}

// Fallback safely dereferences a pointer.
// If the pointer is nil, it returns the provided fallback value instead.
func Fallback[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
