package predict

import (
	"strings"
	"testing"

	"github.com/careloop/medassist/internal/catalog"
)

// stubClassifier returns fixed probabilities and records the vectors
// it was called with.
type stubClassifier struct {
	classes []string
	probs   []float64
	vectors [][]float64
}

func (s *stubClassifier) PredictProba(vector []float64) ([]float64, error) {
	copied := make([]float64, len(vector))
	copy(copied, vector)
	s.vectors = append(s.vectors, copied)

	out := make([]float64, len(s.probs))
	copy(out, s.probs)
	return out, nil
}

func (s *stubClassifier) Classes() []string { return s.classes }
func (s *stubClassifier) InputDim() int     { return 4 }

func (s *stubClassifier) Vocabulary() []string {
	return []string{"cough", "fever", "itching", "skin_rash"}
}

type stubInfo struct {
	descriptions map[string]string
	precautions  map[string][]string
}

func (s stubInfo) Description(condition string) (string, bool) {
	d, ok := s.descriptions[condition]
	return d, ok
}

func (s stubInfo) Precautions(condition string) ([]string, bool) {
	p, ok := s.precautions[condition]
	return p, ok
}

func testEngine(t *testing.T, model Classifier) *Engine {
	t.Helper()

	cat := catalog.New([]string{"cough", "fever", "itching", "skin_rash"})
	info := stubInfo{
		descriptions: map[string]string{"Allergy": "An immune response."},
		precautions:  map[string][]string{"Allergy": {"avoid allergen", "take antihistamine"}},
	}

	e, err := New(cat, model, info)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return e
}

func TestNewRejectsDimensionMismatch(t *testing.T) {
	cat := catalog.New([]string{"cough", "fever"}) // size 2, stub expects 4
	_, err := New(cat, &stubClassifier{classes: []string{"A"}, probs: []float64{1}}, stubInfo{})
	if err == nil {
		t.Fatal("Expected error for catalog/model dimension mismatch")
	}
}

func TestNewRejectsVocabularyMismatch(t *testing.T) {
	// Same dimensionality, different tokens: accepting this model would
	// silently misalign every feature bit.
	cat := catalog.New([]string{"anxiety", "headache", "itching", "nausea"})
	_, err := New(cat, &stubClassifier{classes: []string{"A"}, probs: []float64{1}}, stubInfo{})
	if err == nil {
		t.Fatal("Expected error for catalog/model vocabulary mismatch")
	}
	if !strings.Contains(err.Error(), "vocabulary") {
		t.Errorf("Error should name the vocabulary mismatch, got %q", err)
	}
}

func TestPredictEmptyInput(t *testing.T) {
	e := testEngine(t, &stubClassifier{classes: []string{"Allergy", "Common Cold"}, probs: []float64{0.5, 0.5}})

	candidates, valid, invalid, err := e.Predict(nil, 3)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if candidates != nil {
		t.Errorf("Expected nil candidates, got %v", candidates)
	}
	if len(valid) != 0 || len(invalid) != 0 {
		t.Errorf("Expected empty token lists, got valid=%v invalid=%v", valid, invalid)
	}
}

func TestPredictAllInvalid(t *testing.T) {
	e := testEngine(t, &stubClassifier{classes: []string{"Allergy"}, probs: []float64{1}})

	candidates, valid, invalid, err := e.Predict([]string{"zzzznotasymptom", "qqq"}, 3)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if candidates != nil {
		t.Error("Expected nil candidates when nothing resolves")
	}
	if len(valid) != 0 {
		t.Errorf("Expected no valid tokens, got %v", valid)
	}
	if len(invalid) != 2 || invalid[0] != "zzzznotasymptom" {
		t.Errorf("Invalid terms must be surfaced verbatim, got %v", invalid)
	}
}

func TestPredictVectorInvariants(t *testing.T) {
	stub := &stubClassifier{classes: []string{"Allergy", "Common Cold"}, probs: []float64{0.7, 0.3}}
	e := testEngine(t, stub)

	// Duplicates are kept in the valid list but set the bit once.
	_, valid, _, err := e.Predict([]string{"cough", "Cough", "fever"}, 3)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if len(valid) != 3 {
		t.Errorf("Expected 3 valid tokens (duplicates kept), got %v", valid)
	}

	if len(stub.vectors) != 1 {
		t.Fatalf("Expected 1 classifier call, got %d", len(stub.vectors))
	}
	vec := stub.vectors[0]
	if len(vec) != 4 {
		t.Errorf("Presence vector length = %d, expected catalog size 4", len(vec))
	}

	ones := 0.0
	for _, x := range vec {
		ones += x
	}
	if ones != 2 {
		t.Errorf("Expected 2 bits set (cough, fever), got %v in %v", ones, vec)
	}
}

func TestPredictConfidencePercent(t *testing.T) {
	e := testEngine(t, &stubClassifier{classes: []string{"Allergy", "Common Cold"}, probs: []float64{0.62, 0.38}})

	candidates, _, _, err := e.Predict([]string{"cough"}, 3)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if candidates[0].Condition != "Allergy" || candidates[0].Confidence != 62 {
		t.Errorf("Top candidate = %+v, expected Allergy at 62%%", candidates[0])
	}
}

func TestPredictTieBreakAlphabetical(t *testing.T) {
	e := testEngine(t, &stubClassifier{
		classes: []string{"Typhoid", "Allergy", "Malaria"},
		probs:   []float64{0.3, 0.3, 0.4},
	})

	candidates, _, _, err := e.Predict([]string{"cough"}, 3)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	order := []string{"Malaria", "Allergy", "Typhoid"}
	for i, want := range order {
		if candidates[i].Condition != want {
			t.Errorf("Rank %d: got %q, expected %q", i+1, candidates[i].Condition, want)
		}
	}
}

func TestPredictTopNTruncation(t *testing.T) {
	e := testEngine(t, &stubClassifier{
		classes: []string{"A", "B", "C", "D"},
		probs:   []float64{0.1, 0.2, 0.3, 0.4},
	})

	candidates, _, _, err := e.Predict([]string{"cough"}, 2)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].Condition != "D" || candidates[1].Condition != "C" {
		t.Errorf("Unexpected top-2: %v", candidates)
	}
}

func TestPredictEnrichmentDefaults(t *testing.T) {
	e := testEngine(t, &stubClassifier{classes: []string{"Allergy", "Unknown Disease"}, probs: []float64{0.6, 0.4}})

	candidates, _, _, err := e.Predict([]string{"cough"}, 3)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if candidates[0].Description != "An immune response." {
		t.Errorf("Allergy description = %q", candidates[0].Description)
	}
	if len(candidates[0].Precautions) != 2 {
		t.Errorf("Allergy precautions = %v", candidates[0].Precautions)
	}

	if candidates[1].Description != defaultDescription {
		t.Errorf("Missing description should fall back, got %q", candidates[1].Description)
	}
	if len(candidates[1].Precautions) != 1 || candidates[1].Precautions[0] != defaultPrecaution {
		t.Errorf("Missing precautions should fall back, got %v", candidates[1].Precautions)
	}
}

func TestPredictDeterministic(t *testing.T) {
	e := testEngine(t, &stubClassifier{
		classes: []string{"A", "B", "C"},
		probs:   []float64{0.2, 0.5, 0.3},
	})

	first, _, _, _ := e.Predict([]string{"cough", "fever"}, 3)
	second, _, _, _ := e.Predict([]string{"cough", "fever"}, 3)

	for i := range first {
		if first[i].Condition != second[i].Condition || first[i].Confidence != second[i].Confidence {
			t.Errorf("Rank %d differs between identical calls: %+v vs %+v", i+1, first[i], second[i])
		}
	}
}
