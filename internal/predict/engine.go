package predict

import (
	"fmt"
	"sort"

	"github.com/careloop/medassist/internal/catalog"
	"github.com/careloop/medassist/internal/normalize"
)

// Fallbacks for conditions missing reference rows. Lookup misses are
// never fatal.
const (
	defaultDescription = "Description not available."
	defaultPrecaution  = "Consult a healthcare professional"
)

// Classifier is the trained probabilistic model consumed by the engine.
type Classifier interface {
	PredictProba(vector []float64) ([]float64, error)
	Classes() []string
	Vocabulary() []string
	InputDim() int
}

// ConditionInfo supplies per-condition reference data.
type ConditionInfo interface {
	Description(condition string) (string, bool)
	Precautions(condition string) ([]string, bool)
}

// Candidate is one ranked prediction. Confidence is a percentage.
type Candidate struct {
	Condition   string   `json:"condition"`
	Confidence  float64  `json:"confidence"`
	Description string   `json:"description"`
	Precautions []string `json:"precautions"`
}

// Engine maps free-text symptom lists to ranked condition candidates.
// Immutable after construction and safe for concurrent use.
type Engine struct {
	cat   *catalog.Catalog
	norm  *normalize.Normalizer
	model Classifier
	info  ConditionInfo
}

// New wires an engine. The classifier's vocabulary must match the
// catalog token for token; a mismatch means the model was trained
// against a different pack and its feature bits would be misaligned,
// so it is refused outright.
func New(cat *catalog.Catalog, model Classifier, info ConditionInfo) (*Engine, error) {
	if model.InputDim() != cat.Size() {
		return nil, fmt.Errorf("model expects %d features but catalog has %d symptoms",
			model.InputDim(), cat.Size())
	}
	vocab := model.Vocabulary()
	if len(vocab) != cat.Size() {
		return nil, fmt.Errorf("model vocabulary has %d symptoms but catalog has %d",
			len(vocab), cat.Size())
	}
	for i, symptom := range cat.Symptoms() {
		if vocab[i] != symptom {
			return nil, fmt.Errorf("model vocabulary differs from catalog at feature %d: %q vs %q",
				i, vocab[i], symptom)
		}
	}
	if len(model.Classes()) == 0 {
		return nil, fmt.Errorf("model has no condition labels")
	}

	return &Engine{
		cat:   cat,
		norm:  normalize.New(cat),
		model: model,
		info:  info,
	}, nil
}

// Predict normalizes the raw symptom phrases, builds the presence
// vector and returns the topN candidates ranked by confidence. The
// second and third results are the resolved tokens (duplicates kept,
// in input order) and the unrecognized terms. Candidates are nil when
// nothing resolves; that is a normal outcome, not an error.
func (e *Engine) Predict(symptoms []string, topN int) ([]Candidate, []string, []string, error) {
	vector := make([]float64, e.cat.Size())
	valid := []string{}
	invalid := []string{}

	for _, raw := range symptoms {
		token, ok := e.norm.Normalize(raw)
		if !ok {
			invalid = append(invalid, raw)
			continue
		}
		valid = append(valid, token)
		if idx, ok := e.cat.Index(token); ok {
			vector[idx] = 1
		}
	}

	if len(valid) == 0 {
		return nil, valid, invalid, nil
	}

	probs, err := e.model.PredictProba(vector)
	if err != nil {
		return nil, valid, invalid, fmt.Errorf("classifier: %w", err)
	}

	classes := e.model.Classes()
	if len(probs) != len(classes) {
		return nil, valid, invalid, fmt.Errorf("classifier returned %d probabilities for %d labels",
			len(probs), len(classes))
	}

	candidates := make([]Candidate, len(classes))
	for i, class := range classes {
		candidates[i] = Candidate{
			Condition:  class,
			Confidence: probs[i] * 100,
		}
	}

	// Ties are broken alphabetically so a fixed vector always yields
	// the same ranking.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].Condition < candidates[j].Condition
	})

	if topN > 0 && topN < len(candidates) {
		candidates = candidates[:topN]
	}

	for i := range candidates {
		candidates[i].Description = e.description(candidates[i].Condition)
		candidates[i].Precautions = e.precautions(candidates[i].Condition)
	}

	return candidates, valid, invalid, nil
}

// Normalize exposes symptom resolution for callers that only need the
// token, such as the suggestion-selection path.
func (e *Engine) Normalize(raw string) (string, bool) {
	return e.norm.Normalize(raw)
}

// Catalog returns the engine's symptom catalog.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.cat
}

// Describe returns the condition's description, falling back to a
// placeholder when no reference row exists.
func (e *Engine) Describe(condition string) string {
	return e.description(condition)
}

// PrecautionsFor returns the condition's precaution list, falling back
// to a generic precaution when no reference rows exist.
func (e *Engine) PrecautionsFor(condition string) []string {
	return e.precautions(condition)
}

func (e *Engine) description(condition string) string {
	if d, ok := e.info.Description(condition); ok && d != "" {
		return d
	}
	return defaultDescription
}

func (e *Engine) precautions(condition string) []string {
	if p, ok := e.info.Precautions(condition); ok && len(p) > 0 {
		return p
	}
	return []string{defaultPrecaution}
}
