package models

import (
	"github.com/careloop/medassist/internal/predict"
	"github.com/careloop/medassist/internal/refdata"
	"github.com/careloop/medassist/internal/session"
	"github.com/careloop/medassist/internal/severity"
	"github.com/careloop/medassist/internal/suggest"
)

// PredictRequest is a one-shot prediction request.
type PredictRequest struct {
	Symptoms []string `json:"symptoms"`
	TopN     int      `json:"top_n,omitempty"`
}

// PredictResponse contains a ranked prediction without session state.
type PredictResponse struct {
	Candidates    []predict.Candidate `json:"candidates,omitempty"`
	ValidSymptoms []string            `json:"valid_symptoms"`
	InvalidTerms  []string            `json:"invalid_terms,omitempty"`
	Severity      severity.Assessment `json:"severity"`
	Matched       bool                `json:"matched"`
}

// SessionCreateRequest starts a diagnostic session.
type SessionCreateRequest struct {
	Symptoms []string `json:"symptoms"`
}

// SessionSymptomsRequest adds symptoms to a running session.
type SessionSymptomsRequest struct {
	Symptoms []string `json:"symptoms"`
}

// SessionResponse is the state of a session after a round.
type SessionResponse struct {
	ID            string               `json:"id"`
	State         session.State        `json:"state"`
	Round         int                  `json:"round"`
	Confidence    float64              `json:"confidence"`
	Candidates    []predict.Candidate  `json:"candidates,omitempty"`
	ValidSymptoms []string             `json:"valid_symptoms,omitempty"`
	InvalidTerms  []string             `json:"invalid_terms,omitempty"`
	Severity      *severity.Assessment `json:"severity,omitempty"`
	Suggestions   []suggest.Suggestion `json:"suggestions,omitempty"`
	Diet          *refdata.DietProfile `json:"diet,omitempty"`
	BestEffort    bool                 `json:"best_effort,omitempty"`
	Disclaimer    string               `json:"disclaimer"`
}

// ConditionDetail is the reference data of one condition.
type ConditionDetail struct {
	Condition   string   `json:"condition"`
	Description string   `json:"description"`
	Precautions []string `json:"precautions"`
}

// SymptomInfo is one catalog entry for listing endpoints.
type SymptomInfo struct {
	Token   string `json:"token"`
	Display string `json:"display"`
}
