package classifier

import (
	"sort"
	"strings"
)

// ExtensionSet is a case-insensitive set of file extensions.
// Members are stored without the leading dot, lower-cased.
type ExtensionSet map[string]struct{}

// NewExtensionSet builds a set from extensions written with or without a dot.
func NewExtensionSet(exts ...string) ExtensionSet {
	set := make(ExtensionSet, len(exts))
	set.Add(exts...)
	return set
}

// Add inserts extensions, ignoring blanks.
func (s ExtensionSet) Add(exts ...string) {
	for _, ext := range exts {
		if key := canonicalExt(ext); key != "" {
			s[key] = struct{}{}
		}
	}
}

// Contains reports whether ext (".MKV", "mkv", ...) is in the set.
func (s ExtensionSet) Contains(ext string) bool {
	_, ok := s[canonicalExt(ext)]
	return ok
}

// Sorted returns the members in lexical order.
func (s ExtensionSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for ext := range s {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

func canonicalExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
