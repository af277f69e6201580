// Package normalizer reduces filename base names to a comparable form.
package normalizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds a base name for similarity comparison.
//
// The result is compatibility-decomposed with combining marks removed
// ("Amélie" -> "amelie"), case folded, and every run of separators
// (dots, underscores, dashes, brackets, whitespace) collapsed into a single
// space. Leading and trailing separators are dropped.
func Normalize(base string) string {
	// Transformers carry state and must not be shared between calls.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, base)
	if err != nil {
		stripped = base
	}

	folded := cases.Fold().String(stripped)
	return strings.Join(strings.FieldsFunc(folded, isSeparator), " ")
}

func isSeparator(r rune) bool {
	switch r {
	case '.', '_', '-', '+', '[', ']', '(', ')', '{', '}', ',', ';':
		return true
	}
	return unicode.IsSpace(r)
}
