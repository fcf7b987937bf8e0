package catalog

import (
	"sort"
	"strings"
)

// Catalog is the canonical vocabulary of known symptom tokens.
// Tokens are underscore-joined lowercase words. The catalog is sorted
// lexicographically so that indices are stable across processes; the
// index order defines the column order of classifier presence vectors.
// Read-only after construction.
type Catalog struct {
	symptoms []string
	index    map[string]int
}

// New builds a catalog from the given symptom tokens.
// Duplicates are collapsed and the result is sorted lexicographically.
func New(symptoms []string) *Catalog {
	seen := make(map[string]bool, len(symptoms))
	unique := make([]string, 0, len(symptoms))
	for _, s := range symptoms {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		unique = append(unique, s)
	}
	sort.Strings(unique)

	index := make(map[string]int, len(unique))
	for i, s := range unique {
		index[s] = i
	}

	return &Catalog{symptoms: unique, index: index}
}

// Size returns the number of symptoms, which is also the presence
// vector dimensionality.
func (c *Catalog) Size() int {
	return len(c.symptoms)
}

// Index returns the stable index of a symptom token.
func (c *Catalog) Index(symptom string) (int, bool) {
	i, ok := c.index[symptom]
	return i, ok
}

// Contains reports whether the token is a known symptom.
func (c *Catalog) Contains(symptom string) bool {
	_, ok := c.index[symptom]
	return ok
}

// Symptoms returns all symptom tokens in catalog order.
func (c *Catalog) Symptoms() []string {
	out := make([]string, len(c.symptoms))
	copy(out, c.symptoms)
	return out
}

// DisplayName converts a symptom token to a human-readable form:
// underscores become spaces and each word is capitalized.
func DisplayName(symptom string) string {
	words := strings.Fields(strings.ReplaceAll(symptom, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
