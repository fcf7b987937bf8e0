package classifier

import (
	"math"
	"path/filepath"
	"testing"
)

var testVocab = []string{"cough", "fever", "itching", "skin_rash"}

func testCounts() map[string]map[string]int {
	return map[string]map[string]int{
		"Common Cold": {"cough": 90, "fever": 40},
		"Fungal infection": {"itching": 80, "skin_rash": 70},
	}
}

func trainedModel(t *testing.T) *Model {
	t.Helper()
	m := New(DefaultConfig())
	if err := m.Fit(testCounts(), testVocab); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	return m
}

func TestFitRequiresData(t *testing.T) {
	m := New(DefaultConfig())
	if err := m.Fit(nil, testVocab); err == nil {
		t.Error("Expected error fitting without classes")
	}
	if err := m.Fit(testCounts(), nil); err == nil {
		t.Error("Expected error fitting without vocabulary")
	}
}

func TestPredictProbaUntrained(t *testing.T) {
	m := New(DefaultConfig())
	if _, err := m.PredictProba([]float64{1, 0, 0, 0}); err == nil {
		t.Error("Expected error predicting with untrained model")
	}
}

func TestPredictProbaDimensionCheck(t *testing.T) {
	m := trainedModel(t)
	if _, err := m.PredictProba([]float64{1, 0}); err == nil {
		t.Error("Expected error for mismatched vector length")
	}
}

func TestPredictProbaSumsToOne(t *testing.T) {
	m := trainedModel(t)

	probs, err := m.PredictProba([]float64{1, 1, 0, 0})
	if err != nil {
		t.Fatalf("PredictProba failed: %v", err)
	}
	if len(probs) != 2 {
		t.Fatalf("Expected 2 probabilities, got %d", len(probs))
	}

	sum := 0.0
	for _, p := range probs {
		if p < 0 {
			t.Errorf("Negative probability: %v", p)
		}
		sum += p
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("Probabilities sum to %v, expected 1", sum)
	}
}

func TestPredictProbaSeparatesClasses(t *testing.T) {
	m := trainedModel(t)
	classes := m.Classes()

	// cough+fever should favor Common Cold, itching+skin_rash the infection.
	coldVec := []float64{1, 1, 0, 0}
	fungalVec := []float64{0, 0, 1, 1}

	coldProbs, _ := m.PredictProba(coldVec)
	fungalProbs, _ := m.PredictProba(fungalVec)

	coldIdx, fungalIdx := -1, -1
	for i, c := range classes {
		switch c {
		case "Common Cold":
			coldIdx = i
		case "Fungal infection":
			fungalIdx = i
		}
	}

	if coldProbs[coldIdx] <= coldProbs[fungalIdx] {
		t.Errorf("cough+fever: Common Cold %v not above Fungal infection %v",
			coldProbs[coldIdx], coldProbs[fungalIdx])
	}
	if fungalProbs[fungalIdx] <= fungalProbs[coldIdx] {
		t.Errorf("itching+skin_rash: Fungal infection %v not above Common Cold %v",
			fungalProbs[fungalIdx], fungalProbs[coldIdx])
	}
}

func TestPredictProbaDeterministic(t *testing.T) {
	m := trainedModel(t)
	vec := []float64{1, 0, 1, 0}

	first, err := m.PredictProba(vec)
	if err != nil {
		t.Fatalf("PredictProba failed: %v", err)
	}
	second, err := m.PredictProba(vec)
	if err != nil {
		t.Fatalf("PredictProba failed: %v", err)
	}

	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Probability %d differs between calls: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestClassesSorted(t *testing.T) {
	m := trainedModel(t)
	classes := m.Classes()
	if classes[0] != "Common Cold" || classes[1] != "Fungal infection" {
		t.Errorf("Classes not sorted: %v", classes)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gob")

	m := trainedModel(t)
	if err := m.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := New(DefaultConfig())
	if err := loaded.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !loaded.IsTrained() {
		t.Error("Loaded model should be trained")
	}
	if loaded.InputDim() != len(testVocab) {
		t.Errorf("Loaded InputDim = %d, expected %d", loaded.InputDim(), len(testVocab))
	}

	vec := []float64{1, 1, 0, 0}
	orig, _ := m.PredictProba(vec)
	got, _ := loaded.PredictProba(vec)
	for i := range orig {
		if orig[i] != got[i] {
			t.Errorf("Probability %d changed after save/load: %v vs %v", i, orig[i], got[i])
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	m := New(DefaultConfig())
	if err := m.Load(filepath.Join(t.TempDir(), "nope.gob")); err == nil {
		t.Error("Expected error loading missing file")
	}
}
