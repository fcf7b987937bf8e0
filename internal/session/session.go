package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/careloop/medassist/internal/diet"
	"github.com/careloop/medassist/internal/predict"
	"github.com/careloop/medassist/internal/refdata"
	"github.com/careloop/medassist/internal/severity"
	"github.com/careloop/medassist/internal/suggest"
)

// State of a diagnostic session.
type State string

const (
	StateCollecting       State = "COLLECTING"
	StateAwaitingMoreInfo State = "AWAITING_MORE_INFO"
	StateFinalized        State = "FINALIZED"
	StateNoMatch          State = "TERMINAL_NO_MATCH"
)

const (
	// ConfidenceTarget is the percentage at which a prediction is
	// accepted without further questioning.
	ConfidenceTarget = 50.0

	// MaxRounds caps the refinement loop; confidence is not
	// guaranteed to ever cross the target, so the machine finalizes
	// best-effort when the cap is hit.
	MaxRounds = 5

	topPredict     = 5
	topDisplay     = 3
	maxSuggestions = 8
)

// ErrFinished is returned when input is submitted to a session that
// has already reached a terminal state.
var ErrFinished = errors.New("session is finished")

// ErrNoPrediction is returned when Finalize is called before any
// prediction round has run.
var ErrNoPrediction = errors.New("session has no prediction yet")

// Predictor runs the ranked prediction. Satisfied by *predict.Engine.
type Predictor interface {
	Predict(symptoms []string, topN int) ([]predict.Candidate, []string, []string, error)
}

// Deps are the read-only collaborators driving a session. They are
// shared across sessions; Session state itself belongs to one caller.
type Deps struct {
	Predictor Predictor
	Scorer    *severity.Scorer
	Suggester *suggest.Suggester
	Diet      *diet.Recommender
}

// Result is the outcome of one prediction round.
type Result struct {
	State         State                 `json:"state"`
	Round         int                   `json:"round"`
	Candidates    []predict.Candidate   `json:"candidates,omitempty"`
	Confidence    float64               `json:"confidence"`
	ValidSymptoms []string              `json:"valid_symptoms"`
	InvalidTerms  []string              `json:"invalid_terms,omitempty"`
	Severity      severity.Assessment   `json:"severity"`
	Suggestions   []suggest.Suggestion  `json:"suggestions,omitempty"`
	Diet          *refdata.DietProfile  `json:"diet,omitempty"`
	BestEffort    bool                  `json:"best_effort,omitempty"`
}

// Session drives the iterative diagnostic loop for one user
// interaction. Not safe for concurrent use; each session is owned by
// the caller driving it.
type Session struct {
	ID uuid.UUID

	deps     Deps
	symptoms []string
	round    int
	state    State
	last     *Result
}

// New creates a session in the collecting state.
func New(deps Deps) *Session {
	return &Session{
		ID:    uuid.New(),
		deps:  deps,
		state: StateCollecting,
	}
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Last returns the most recent round result, or nil.
func (s *Session) Last() *Result {
	return s.last
}

// Symptoms returns the accumulated raw symptom phrases.
func (s *Session) Symptoms() []string {
	out := make([]string, len(s.symptoms))
	copy(out, s.symptoms)
	return out
}

// Submit adds raw symptom phrases (the initial batch or a follow-up
// selection) and runs a prediction round.
func (s *Session) Submit(raw []string) (*Result, error) {
	if s.state == StateFinalized || s.state == StateNoMatch {
		return nil, ErrFinished
	}
	if len(raw) == 0 && len(s.symptoms) == 0 {
		return nil, fmt.Errorf("no symptoms provided")
	}

	s.symptoms = append(s.symptoms, raw...)
	return s.evaluate()
}

// Finalize forces the low-confidence result to be accepted ("show
// now"). Only meaningful while the session awaits more input.
func (s *Session) Finalize() (*Result, error) {
	if s.state == StateFinalized || s.state == StateNoMatch {
		return nil, ErrFinished
	}
	if s.last == nil {
		return nil, ErrNoPrediction
	}

	s.state = StateFinalized
	s.last.State = StateFinalized
	s.last.BestEffort = true
	s.last.Suggestions = nil
	return s.last, nil
}

// Restart discards all state and returns to an empty collecting
// session, keeping the same ID.
func (s *Session) Restart() {
	s.symptoms = nil
	s.round = 0
	s.state = StateCollecting
	s.last = nil
}

// evaluate runs one prediction round and applies the transition rules.
func (s *Session) evaluate() (*Result, error) {
	s.round++

	candidates, valid, invalid, err := s.deps.Predictor.Predict(s.symptoms, topPredict)
	if err != nil {
		return nil, err
	}

	if candidates == nil {
		s.state = StateNoMatch
		s.last = &Result{
			State:         StateNoMatch,
			Round:         s.round,
			ValidSymptoms: valid,
			InvalidTerms:  invalid,
		}
		return s.last, nil
	}

	display := candidates
	if len(display) > topDisplay {
		display = display[:topDisplay]
	}

	result := &Result{
		Round:         s.round,
		Candidates:    display,
		Confidence:    candidates[0].Confidence,
		ValidSymptoms: valid,
		InvalidTerms:  invalid,
		Severity:      s.deps.Scorer.Score(valid),
	}

	switch {
	case result.Confidence >= ConfidenceTarget:
		result.State = StateFinalized
		result.Diet = s.dietFor(candidates[0].Condition)

	case s.round >= MaxRounds:
		result.State = StateFinalized
		result.BestEffort = true

	default:
		conditions := make([]string, len(display))
		for i, c := range display {
			conditions[i] = c.Condition
		}
		suggestions := s.deps.Suggester.Suggest(valid, conditions, maxSuggestions)
		if len(suggestions) == 0 {
			// No further question can help.
			result.State = StateFinalized
			result.BestEffort = true
		} else {
			result.State = StateAwaitingMoreInfo
			result.Suggestions = suggestions
		}
	}

	s.state = result.State
	s.last = result
	return result, nil
}

// dietFor attaches a diet recommendation keyed off a chronic-condition
// match against the top condition label.
func (s *Session) dietFor(condition string) *refdata.DietProfile {
	if s.deps.Diet == nil {
		return nil
	}
	profile, ok := s.deps.Diet.Recommend(diet.ChronicHint(condition))
	if !ok {
		return nil
	}
	return &profile
}
