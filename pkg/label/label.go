// Copyright (c) 2026 Herdcount. All rights reserved.

// Package label canonicalises short human-entered strings such as usernames,
// device names and animal types.
//
// # Usage
//
// Two spellings that render identically must compare equal, so "café" typed
// with a combining accent and "café" typed precomposed become the same label.
// Case is preserved.
package label

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize converts s into its canonical label form.
//
// # Transformation Pipeline
//
// 1. Removes control and format characters (e.g. zero-width space).
// 2. Normalizes to NFC (composes accented chars: e + combining acute → é).
// 3. Collapses runs of whitespace into a single space.
// 4. Trims leading and trailing whitespace.
func Normalize(s string) string {
	// 1. Drop invisible characters, then compose
	t := transform.Chain(transform.RemoveFunc(isInvisible), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = norm.NFC.String(s)
	}

	// 2. Collapse whitespace
	return strings.Join(strings.Fields(result), " ")
}

// Canonical only composes s to NFC. Identifiers such as usernames use it, so
// surrounding spaces and invisible runes stay significant.
func Canonical(s string) string {
	return norm.NFC.String(s)
}

// OrDefault normalizes s and returns fallback when nothing is left.
func OrDefault(s, fallback string) string {
	if normalized := Normalize(s); normalized != "" {
		return normalized
	}
	return fallback
}

// isInvisible reports whether r is a control or format rune other than
// ordinary whitespace.
func isInvisible(r rune) bool {
	if unicode.IsSpace(r) {
		return false
	}
	return unicode.Is(unicode.Cc, r) || unicode.Is(unicode.Cf, r)
}
