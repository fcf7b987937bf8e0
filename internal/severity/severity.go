package severity

// DefaultWeight is used for symptoms missing from the severity table.
const DefaultWeight = 2

// Level is the qualitative severity tier.
type Level string

const (
	LevelLow      Level = "LOW"
	LevelModerate Level = "MODERATE"
	LevelHigh     Level = "HIGH"
	LevelCritical Level = "CRITICAL"
)

// Advice returns the guidance text shown alongside a level.
func (l Level) Advice() string {
	switch l {
	case LevelCritical:
		return "Seek immediate medical attention"
	case LevelHigh:
		return "Consult a doctor soon"
	case LevelModerate:
		return "Monitor symptoms"
	default:
		return "Rest and self-care"
	}
}

// LevelForAverage maps an average weight to a tier. Boundaries are
// inclusive on the lower bound of each tier.
func LevelForAverage(avg float64) Level {
	switch {
	case avg >= 4:
		return LevelCritical
	case avg >= 3:
		return LevelHigh
	case avg >= 2:
		return LevelModerate
	default:
		return LevelLow
	}
}

// Detail is the per-symptom contribution to an assessment.
type Detail struct {
	Symptom string `json:"symptom"`
	Weight  int    `json:"weight"`
}

// Assessment aggregates symptom severity weights.
type Assessment struct {
	Total   int      `json:"total"`
	Average float64  `json:"average"`
	Details []Detail `json:"details"`
	Level   Level    `json:"level"`
}

// WeightSource looks up the severity weight of a symptom token.
type WeightSource interface {
	SeverityWeight(symptom string) (int, bool)
}

// Scorer computes severity assessments from a weight table.
type Scorer struct {
	weights WeightSource
}

// NewScorer creates a scorer over the given weight table.
func NewScorer(weights WeightSource) *Scorer {
	return &Scorer{weights: weights}
}

// Score folds the weights of the given symptoms. Duplicates count
// twice; deduplication, if wanted, is the caller's choice. An empty
// list yields a zero assessment at LevelLow.
func (s *Scorer) Score(symptoms []string) Assessment {
	a := Assessment{Details: make([]Detail, 0, len(symptoms))}

	for _, symptom := range symptoms {
		weight, ok := s.weights.SeverityWeight(symptom)
		if !ok {
			weight = DefaultWeight
		}
		a.Total += weight
		a.Details = append(a.Details, Detail{Symptom: symptom, Weight: weight})
	}

	if len(symptoms) > 0 {
		a.Average = float64(a.Total) / float64(len(symptoms))
	}
	a.Level = LevelForAverage(a.Average)
	return a
}
