package diet

import (
	"sync"
	"testing"

	"github.com/careloop/medassist/internal/refdata"
)

func testProfiles() []refdata.DietProfile {
	return []refdata.DietProfile{
		{ChronicCondition: "Diabetes", MealPlan: "Low-carb plan", Calories: 1800},
		{ChronicCondition: "Hypertension", MealPlan: "Low-sodium plan", Calories: 2000},
		{ChronicCondition: "", MealPlan: "Balanced plan", Calories: 2200},
	}
}

func TestChronicHint(t *testing.T) {
	tests := []struct {
		label    string
		expected string
	}{
		{"Diabetes", "Diabetes"},
		{"Type 2 diabetes mellitus", "Diabetes"},
		{"HYPERTENSION stage 1", "Hypertension"},
		{"Heart disease", "Heart Disease"},
		{"Common Cold", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ChronicHint(tt.label); got != tt.expected {
			t.Errorf("ChronicHint(%q) = %q, expected %q", tt.label, got, tt.expected)
		}
	}
}

func TestRecommendFirstMatch(t *testing.T) {
	r := New(testProfiles(), WithChooser(FirstMatch))

	p, ok := r.Recommend("Diabetes")
	if !ok {
		t.Fatal("Expected a recommendation")
	}
	if p.MealPlan != "Low-carb plan" {
		t.Errorf("Expected the Diabetes profile, got %+v", p)
	}
}

func TestRecommendHintCaseInsensitive(t *testing.T) {
	r := New(testProfiles(), WithChooser(FirstMatch))

	p, _ := r.Recommend("hypertension")
	if p.MealPlan != "Low-sodium plan" {
		t.Errorf("Expected the Hypertension profile, got %+v", p)
	}
}

func TestRecommendFallbackToFullTable(t *testing.T) {
	r := New(testProfiles(), WithChooser(FirstMatch))

	// No profile is tagged Obesity; selection falls back to all rows.
	p, ok := r.Recommend("Obesity")
	if !ok {
		t.Fatal("Expected a recommendation despite no tag match")
	}
	if p.MealPlan != "Low-carb plan" {
		t.Errorf("Fallback should choose from the full table, got %+v", p)
	}
}

func TestRecommendNoHint(t *testing.T) {
	r := New(testProfiles(), WithChooser(FirstMatch))

	p, ok := r.Recommend("")
	if !ok || p.MealPlan != "Low-carb plan" {
		t.Errorf("Expected first profile for empty hint, got %+v (%v)", p, ok)
	}
}

func TestRecommendEmptyTable(t *testing.T) {
	r := New(nil)
	if _, ok := r.Recommend("Diabetes"); ok {
		t.Error("Expected no recommendation from an empty table")
	}
}

func TestSeededChooserConcurrent(t *testing.T) {
	// One recommender is shared by every live session; concurrent
	// Recommend calls must be safe under the race detector.
	r := New(testProfiles(), WithChooser(SeededChooser(7)))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, ok := r.Recommend(""); !ok {
					t.Error("Expected a recommendation")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestSeededChooserReproducible(t *testing.T) {
	a := New(testProfiles(), WithChooser(SeededChooser(42)))
	b := New(testProfiles(), WithChooser(SeededChooser(42)))

	for i := 0; i < 10; i++ {
		pa, _ := a.Recommend("")
		pb, _ := b.Recommend("")
		if pa.MealPlan != pb.MealPlan {
			t.Fatalf("Call %d: seeded choosers diverged: %q vs %q", i, pa.MealPlan, pb.MealPlan)
		}
	}
}
