// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes characters and removes combining marks, so
// "Örn" folds to "Orn" and "José" to "Jose".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeKey derives a stable identity key from a human-readable
// display name: strip diacritics, lowercase, collapse whitespace runs
// to single hyphens. The derivation is idempotent, so the same display
// name always maps to the same voter document.
func NormalizeKey(displayName string) string {
	folded, _, err := transform.String(stripMarks, displayName)
	if err != nil {
		// Fall back to the raw input; a non-transformable name still
		// needs a deterministic key.
		folded = displayName
	}

	folded = strings.ToLower(folded)

	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, "-")
}
