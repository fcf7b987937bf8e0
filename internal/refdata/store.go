package refdata

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// DietProfile is one row of the diet reference table.
type DietProfile struct {
	ChronicCondition string  `json:"chronic_condition,omitempty"`
	MealPlan         string  `json:"meal_plan"`
	Calories         int     `json:"calories"`
	ProteinG         float64 `json:"protein_g"`
	CarbsG           float64 `json:"carbs_g"`
	FatsG            float64 `json:"fats_g"`
}

// Store provides read-only access to the medical reference tables,
// shipped as a single SQLite data pack. All tables are loaded into
// memory at open time; the store is immutable afterwards and safe to
// share across concurrent sessions without locking.
type Store struct {
	symptoms     []string
	severity     map[string]int
	descriptions map[string]string
	precautions  map[string][]string
	diets        []DietProfile
	assoc        map[string]map[string]int
}

// Open loads the data pack at the given path. A missing or incomplete
// pack is a fatal condition for the caller; the store refuses to open
// rather than degrade silently.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("could not open data pack: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("could not read data pack: %w", err)
	}

	s := &Store{
		severity:     make(map[string]int),
		descriptions: make(map[string]string),
		precautions:  make(map[string][]string),
		assoc:        make(map[string]map[string]int),
	}

	loaders := []struct {
		name string
		fn   func(*sql.DB) error
	}{
		{"severity", s.loadSeverity},
		{"description", s.loadDescriptions},
		{"precaution", s.loadPrecautions},
		{"diet", s.loadDiets},
		{"association", s.loadAssociations},
	}
	for _, l := range loaders {
		if err := l.fn(db); err != nil {
			return nil, fmt.Errorf("data pack table %s: %w", l.name, err)
		}
	}

	return s, nil
}

func (s *Store) loadSeverity(db *sql.DB) error {
	rows, err := db.Query("SELECT symptom, weight FROM severity")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var symptom string
		var weight int
		if err := rows.Scan(&symptom, &weight); err != nil {
			return err
		}
		s.severity[severityKey(symptom)] = weight
	}
	return rows.Err()
}

func (s *Store) loadDescriptions(db *sql.DB) error {
	rows, err := db.Query("SELECT disease, description FROM description")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var disease, desc string
		if err := rows.Scan(&disease, &desc); err != nil {
			return err
		}
		s.descriptions[disease] = desc
	}
	return rows.Err()
}

func (s *Store) loadPrecautions(db *sql.DB) error {
	rows, err := db.Query("SELECT disease, precaution FROM precaution ORDER BY disease, position")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var disease, precaution string
		if err := rows.Scan(&disease, &precaution); err != nil {
			return err
		}
		if precaution = strings.TrimSpace(precaution); precaution != "" {
			s.precautions[disease] = append(s.precautions[disease], precaution)
		}
	}
	return rows.Err()
}

func (s *Store) loadDiets(db *sql.DB) error {
	rows, err := db.Query("SELECT chronic_condition, meal_plan, calories, protein_g, carbs_g, fats_g FROM diet")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p DietProfile
		var chronic sql.NullString
		if err := rows.Scan(&chronic, &p.MealPlan, &p.Calories, &p.ProteinG, &p.CarbsG, &p.FatsG); err != nil {
			return err
		}
		p.ChronicCondition = chronic.String
		s.diets = append(s.diets, p)
	}
	return rows.Err()
}

func (s *Store) loadAssociations(db *sql.DB) error {
	rows, err := db.Query("SELECT disease, symptom, cases FROM association")
	if err != nil {
		return err
	}
	defer rows.Close()

	symptomSet := make(map[string]bool)
	for rows.Next() {
		var disease, symptom string
		var cases int
		if err := rows.Scan(&disease, &symptom, &cases); err != nil {
			return err
		}
		if s.assoc[disease] == nil {
			s.assoc[disease] = make(map[string]int)
		}
		s.assoc[disease][symptom] += cases
		symptomSet[symptom] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(s.assoc) == 0 {
		return fmt.Errorf("no disease/symptom associations")
	}

	s.symptoms = make([]string, 0, len(symptomSet))
	for symptom := range symptomSet {
		s.symptoms = append(s.symptoms, symptom)
	}
	sort.Strings(s.symptoms)
	return nil
}

// Symptoms returns the distinct symptom vocabulary of the association
// table, sorted lexicographically. This is the catalog source.
func (s *Store) Symptoms() []string {
	out := make([]string, len(s.symptoms))
	copy(out, s.symptoms)
	return out
}

// SeverityWeight looks up the severity weight of a symptom. Keys are
// compared case-insensitively with underscores treated as spaces.
func (s *Store) SeverityWeight(symptom string) (int, bool) {
	w, ok := s.severity[severityKey(symptom)]
	return w, ok
}

// Description returns the free-text description of a condition.
func (s *Store) Description(condition string) (string, bool) {
	d, ok := s.descriptions[condition]
	return d, ok
}

// Precautions returns the ordered precaution list of a condition.
func (s *Store) Precautions(condition string) ([]string, bool) {
	p, ok := s.precautions[condition]
	if !ok {
		return nil, false
	}
	out := make([]string, len(p))
	copy(out, p)
	return out, true
}

// Diets returns all diet profiles.
func (s *Store) Diets() []DietProfile {
	out := make([]DietProfile, len(s.diets))
	copy(out, s.diets)
	return out
}

// Conditions returns all condition labels of the association table,
// sorted lexicographically.
func (s *Store) Conditions() []string {
	out := make([]string, 0, len(s.assoc))
	for c := range s.assoc {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// HasCondition reports whether the condition label is known.
func (s *Store) HasCondition(condition string) bool {
	_, ok := s.assoc[condition]
	return ok
}

// SymptomCounts sums, per symptom, the historical case counts across
// the given conditions. Unknown conditions contribute nothing.
func (s *Store) SymptomCounts(conditions []string) map[string]int {
	counts := make(map[string]int)
	for _, c := range conditions {
		for symptom, n := range s.assoc[c] {
			counts[symptom] += n
		}
	}
	return counts
}

// AssociationCounts returns the per-condition symptom case counts,
// which is the classifier's training input.
func (s *Store) AssociationCounts() map[string]map[string]int {
	out := make(map[string]map[string]int, len(s.assoc))
	for c, m := range s.assoc {
		inner := make(map[string]int, len(m))
		for symptom, n := range m {
			inner[symptom] = n
		}
		out[c] = inner
	}
	return out
}

func severityKey(symptom string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(symptom)), "_", " ")
}
