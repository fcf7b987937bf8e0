package normalize

import (
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/careloop/medassist/internal/catalog"
)

// fuzzyCutoff is the minimum similarity ratio for a fuzzy match.
const fuzzyCutoff = 0.7

var punctuation = regexp.MustCompile(`[^\w\s]`)

// Normalizer resolves free-text symptom phrases to catalog tokens.
// Exact variants are tried before fuzzy matching so that a valid or
// near-valid canonical term is never "corrected" to a different one.
type Normalizer struct {
	cat *catalog.Catalog
}

// New creates a normalizer over the given catalog.
func New(cat *catalog.Catalog) *Normalizer {
	return &Normalizer{cat: cat}
}

// Normalize resolves raw user text to a canonical symptom token.
// Returns false when the input matches nothing in the catalog; callers
// must surface such terms to the user rather than drop them.
func (n *Normalizer) Normalize(raw string) (string, bool) {
	cleaned := punctuation.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), "")

	variants := []string{
		cleaned,
		strings.ReplaceAll(cleaned, " ", "_"),
		strings.ReplaceAll(cleaned, "_", " "),
	}
	for _, v := range variants {
		if n.cat.Contains(v) {
			return v, true
		}
	}

	if match, ok := n.closestMatch(cleaned); ok {
		return match, true
	}

	// Retry against the underscore-joined form; the catalog stores
	// underscore tokens, which helps multi-word input.
	return n.closestMatch(strings.ReplaceAll(cleaned, " ", "_"))
}

// closestMatch returns the single best catalog entry with similarity
// ratio >= fuzzyCutoff. The catalog is sorted, and ties keep the first
// candidate, so the result is deterministic.
func (n *Normalizer) closestMatch(input string) (string, bool) {
	if input == "" {
		return "", false
	}

	best := ""
	bestRatio := 0.0
	for _, candidate := range n.cat.Symptoms() {
		r := ratio(input, candidate)
		if r >= fuzzyCutoff && r > bestRatio {
			best = candidate
			bestRatio = r
		}
	}
	return best, best != ""
}

// ratio computes the Ratcliff/Obershelp similarity of two strings.
func ratio(a, b string) float64 {
	return difflib.NewMatcher(splitChars(a), splitChars(b)).Ratio()
}

func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
