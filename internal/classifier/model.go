package classifier

import (
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"
)

// Model is a multinomial naive Bayes classifier over binary symptom
// presence vectors. It emits a calibrated probability per condition
// label; probabilities over the closed label set sum to 1.
type Model struct {
	alpha float64

	classes []string
	vocab   []string

	// logPrior is per class, logProb is [class][feature].
	logPrior [][]float64
	logProb  [][]float64

	trained bool
	mu      sync.RWMutex
}

// Config holds model hyperparameters.
type Config struct {
	// Alpha is the Lidstone smoothing constant.
	Alpha float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{Alpha: 1.0}
}

// New creates an untrained model.
func New(cfg Config) *Model {
	alpha := cfg.Alpha
	if alpha <= 0 {
		alpha = 1.0
	}
	return &Model{alpha: alpha}
}

// Fit trains the model from per-condition symptom case counts. The
// vocabulary fixes the feature order and must match the catalog the
// presence vectors are built against. Class priors are uniform; the
// source dataset carries the same number of records per condition.
func (m *Model) Fit(counts map[string]map[string]int, vocab []string) error {
	if len(counts) == 0 {
		return fmt.Errorf("no training classes")
	}
	if len(vocab) == 0 {
		return fmt.Errorf("empty vocabulary")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.vocab = make([]string, len(vocab))
	copy(m.vocab, vocab)

	vocabIndex := make(map[string]int, len(vocab))
	for i, s := range m.vocab {
		vocabIndex[s] = i
	}

	m.classes = make([]string, 0, len(counts))
	for class := range counts {
		m.classes = append(m.classes, class)
	}
	sort.Strings(m.classes)

	prior := make([]float64, len(m.classes))
	logPriorVal := -math.Log(float64(len(m.classes)))
	for i := range prior {
		prior[i] = logPriorVal
	}
	m.logPrior = [][]float64{prior}

	m.logProb = make([][]float64, len(m.classes))
	for ci, class := range m.classes {
		features := make([]float64, len(m.vocab))
		total := 0.0
		for symptom, n := range counts[class] {
			if fi, ok := vocabIndex[symptom]; ok {
				features[fi] = float64(n)
				total += float64(n)
			}
		}

		denom := math.Log(total + m.alpha*float64(len(m.vocab)))
		logs := make([]float64, len(m.vocab))
		for fi := range logs {
			logs[fi] = math.Log(features[fi]+m.alpha) - denom
		}
		m.logProb[ci] = logs
	}

	m.trained = true
	return nil
}

// PredictProba returns the probability of each condition label given a
// presence vector. Output order matches Classes(). The computation is
// pure, so repeated calls on the same vector are bit-identical.
func (m *Model) PredictProba(vector []float64) ([]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.trained {
		return nil, fmt.Errorf("model is not trained")
	}
	if len(vector) != len(m.vocab) {
		return nil, fmt.Errorf("vector length %d does not match vocabulary size %d", len(vector), len(m.vocab))
	}

	scores := make([]float64, len(m.classes))
	for ci := range m.classes {
		score := m.logPrior[0][ci]
		logs := m.logProb[ci]
		for fi, x := range vector {
			if x != 0 {
				score += x * logs[fi]
			}
		}
		scores[ci] = score
	}

	return softmax(scores), nil
}

// Classes returns the condition labels in prediction order.
func (m *Model) Classes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, len(m.classes))
	copy(out, m.classes)
	return out
}

// Vocabulary returns the symptom vocabulary in feature order.
func (m *Model) Vocabulary() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, len(m.vocab))
	copy(out, m.vocab)
	return out
}

// InputDim returns the expected presence vector length.
func (m *Model) InputDim() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vocab)
}

// IsTrained returns whether the model has been trained.
func (m *Model) IsTrained() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trained
}

type modelData struct {
	Alpha    float64
	Classes  []string
	Vocab    []string
	LogPrior [][]float64
	LogProb  [][]float64
	Trained  bool
}

// Save writes the trained model to disk.
func (m *Model) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return gob.NewEncoder(f).Encode(modelData{
		Alpha:    m.alpha,
		Classes:  m.classes,
		Vocab:    m.vocab,
		LogPrior: m.logPrior,
		LogProb:  m.logProb,
		Trained:  m.trained,
	})
}

// Load reads a trained model from disk.
func (m *Model) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var data modelData
	if err := gob.NewDecoder(f).Decode(&data); err != nil {
		return fmt.Errorf("could not decode model: %w", err)
	}
	if !data.Trained || len(data.Classes) == 0 || len(data.Vocab) == 0 {
		return fmt.Errorf("model artifact is incomplete")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.alpha = data.Alpha
	m.classes = data.Classes
	m.vocab = data.Vocab
	m.logPrior = data.LogPrior
	m.logProb = data.LogProb
	m.trained = data.Trained
	return nil
}

// softmax converts log scores to probabilities, shifting by the max
// score for numerical stability.
func softmax(scores []float64) []float64 {
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}

	probs := make([]float64, len(scores))
	sum := 0.0
	for i, s := range scores {
		probs[i] = math.Exp(s - max)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
