package suggest

import (
	"sort"
	"strings"

	"github.com/careloop/medassist/internal/catalog"
)

// AssociationSource sums historical symptom case counts across a set
// of conditions.
type AssociationSource interface {
	SymptomCounts(conditions []string) map[string]int
}

// Suggestion is one proposed follow-up symptom.
type Suggestion struct {
	Token   string `json:"token"`
	Display string `json:"display"`
}

// Suggester proposes unreported symptoms associated with candidate
// conditions, used to sharpen low-confidence predictions.
type Suggester struct {
	assoc AssociationSource
	cat   *catalog.Catalog
}

// New creates a suggester.
func New(assoc AssociationSource, cat *catalog.Catalog) *Suggester {
	return &Suggester{assoc: assoc, cat: cat}
}

// Suggest returns up to max symptoms associated with the given
// conditions that the user has not already reported. Ordering is
// deterministic: descending association frequency, then catalog order.
// An empty result means no further question can help.
func (s *Suggester) Suggest(current []string, conditions []string, max int) []Suggestion {
	counts := s.assoc.SymptomCounts(conditions)
	if len(counts) == 0 {
		return nil
	}

	reported := make(map[string]bool, len(current))
	for _, symptom := range current {
		reported[suggestKey(symptom)] = true
	}

	tokens := make([]string, 0, len(counts))
	for token := range counts {
		if !reported[suggestKey(token)] {
			tokens = append(tokens, token)
		}
	}

	sort.Slice(tokens, func(i, j int) bool {
		if counts[tokens[i]] != counts[tokens[j]] {
			return counts[tokens[i]] > counts[tokens[j]]
		}
		ii, iok := s.cat.Index(tokens[i])
		ji, jok := s.cat.Index(tokens[j])
		if iok && jok {
			return ii < ji
		}
		return tokens[i] < tokens[j]
	})

	if max > 0 && max < len(tokens) {
		tokens = tokens[:max]
	}

	out := make([]Suggestion, len(tokens))
	for i, token := range tokens {
		out[i] = Suggestion{Token: token, Display: catalog.DisplayName(token)}
	}
	return out
}

func suggestKey(symptom string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(symptom)), " ", "_")
}
