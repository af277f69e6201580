package matcher

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"subrename/internal/normalizer"
)

// name is a base name prepared for repeated comparison.
type name struct {
	normalized string
	signature  Signature
	hasSig     bool
}

func prepare(base string) name {
	n := name{normalized: normalizer.Normalize(base)}
	n.signature, n.hasSig = ParseSignature(n.normalized)
	return n
}

func prepareAll(bases []string) []name {
	out := make([]name, len(bases))
	for i, b := range bases {
		out[i] = prepare(b)
	}
	return out
}

// Similarity scores two base names in [0,1]. Argument order does not matter
// and names that normalize identically score exactly 1.
//
// The base score is the normalized Levenshtein similarity of the normalized
// names. When both names carry an episode signature, differing signatures
// force the score to 0 and equal signatures lift it halfway towards 1.
func Similarity(a, b string) float64 {
	score, _ := compare(prepare(a), prepare(b))
	return score
}

// compare scores a against b. ok is false when both names carry episode
// signatures that differ; such a pair must never be matched.
func compare(a, b name) (score float64, ok bool) {
	score = editSimilarity(a.normalized, b.normalized)
	if a.hasSig && b.hasSig {
		if a.signature != b.signature {
			return 0, false
		}
		score += (1 - score) / 2
	}
	return score, true
}

// EpisodeOf reports the episode signature found in base, if any.
func EpisodeOf(base string) (Signature, bool) {
	n := prepare(base)
	return n.signature, n.hasSig
}

func editSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
