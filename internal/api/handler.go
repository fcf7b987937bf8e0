package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/careloop/medassist/internal/catalog"
	"github.com/careloop/medassist/internal/config"
	"github.com/careloop/medassist/internal/models"
	"github.com/careloop/medassist/internal/predict"
	"github.com/careloop/medassist/internal/session"
	"github.com/careloop/medassist/internal/severity"
)

// Disclaimer accompanies every session response. Predictions are
// informational only, not a medical diagnosis.
const Disclaimer = "This is an AI-based prediction system for informational purposes only. " +
	"Please consult a qualified healthcare professional for proper diagnosis and treatment."

const defaultTopN = 3

// ConditionSource lists the known condition labels.
type ConditionSource interface {
	Conditions() []string
	HasCondition(condition string) bool
}

// Handler provides the HTTP API endpoints.
type Handler struct {
	engine     *predict.Engine
	scorer     *severity.Scorer
	sessions   *session.Manager
	conditions ConditionSource
	cfg        config.Config
}

// NewHandler creates a new API handler.
func NewHandler(engine *predict.Engine, scorer *severity.Scorer, sessions *session.Manager, conditions ConditionSource, cfg config.Config) *Handler {
	return &Handler{
		engine:     engine,
		scorer:     scorer,
		sessions:   sessions,
		conditions: conditions,
		cfg:        cfg,
	}
}

// RegisterRoutes sets up all API routes.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.handleHealth).Methods("GET")
	r.HandleFunc("/info", h.handleInfo).Methods("GET")
	r.HandleFunc("/symptoms", h.handleListSymptoms).Methods("GET")
	r.HandleFunc("/conditions", h.handleListConditions).Methods("GET")
	r.HandleFunc("/conditions/{name}", h.handleConditionDetail).Methods("GET")
	r.HandleFunc("/predict", h.handlePredict).Methods("POST")

	r.HandleFunc("/sessions", h.handleSessionCreate).Methods("POST")
	r.HandleFunc("/sessions/{id}", h.handleSessionGet).Methods("GET")
	r.HandleFunc("/sessions/{id}", h.handleSessionDelete).Methods("DELETE")
	r.HandleFunc("/sessions/{id}/symptoms", h.handleSessionSymptoms).Methods("POST")
	r.HandleFunc("/sessions/{id}/finalize", h.handleSessionFinalize).Methods("POST")
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"version":       h.cfg.Version,
		"symptoms":      h.engine.Catalog().Size(),
		"live_sessions": h.sessions.Len(),
	}
	respondJSON(w, http.StatusOK, info)
}

func (h *Handler) handleListSymptoms(w http.ResponseWriter, r *http.Request) {
	symptoms := h.engine.Catalog().Symptoms()
	out := make([]models.SymptomInfo, len(symptoms))
	for i, token := range symptoms {
		out[i] = models.SymptomInfo{Token: token, Display: catalog.DisplayName(token)}
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) handleListConditions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.conditions.Conditions())
}

func (h *Handler) handleConditionDetail(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if !h.conditions.HasCondition(name) {
		respondError(w, http.StatusNotFound, "unknown condition")
		return
	}

	respondJSON(w, http.StatusOK, models.ConditionDetail{
		Condition:   name,
		Description: h.engine.Describe(name),
		Precautions: h.engine.PrecautionsFor(name),
	})
}

// handlePredict runs a stateless one-shot prediction.
func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req models.PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	symptoms := cleanSymptoms(req.Symptoms)
	if len(symptoms) == 0 {
		respondError(w, http.StatusBadRequest, "symptoms are required")
		return
	}

	topN := req.TopN
	if topN <= 0 {
		topN = defaultTopN
	}

	candidates, valid, invalid, err := h.engine.Predict(symptoms, topN)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, models.PredictResponse{
		Candidates:    candidates,
		ValidSymptoms: valid,
		InvalidTerms:  invalid,
		Severity:      h.scorer.Score(valid),
		Matched:       candidates != nil,
	})
}

func (h *Handler) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	var req models.SessionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	symptoms := cleanSymptoms(req.Symptoms)
	if len(symptoms) == 0 {
		respondError(w, http.StatusBadRequest, "symptoms are required")
		return
	}

	id := h.sessions.Create()
	var result *session.Result
	err := h.sessions.Do(id, func(s *session.Session) error {
		var err error
		result, err = s.Submit(symptoms)
		return err
	})
	if err != nil {
		h.sessions.Delete(id)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, sessionResponse(id, result))
}

func (h *Handler) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var result *session.Result
	err := h.sessions.Do(id, func(s *session.Session) error {
		result = s.Last()
		return nil
	})
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if result == nil {
		respondError(w, http.StatusNotFound, "session has no result yet")
		return
	}

	respondJSON(w, http.StatusOK, sessionResponse(id, result))
}

func (h *Handler) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	h.sessions.Delete(id)
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleSessionSymptoms(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req models.SessionSymptomsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	symptoms := cleanSymptoms(req.Symptoms)
	if len(symptoms) == 0 {
		respondError(w, http.StatusBadRequest, "symptoms are required")
		return
	}

	var result *session.Result
	err := h.sessions.Do(id, func(s *session.Session) error {
		var err error
		result, err = s.Submit(symptoms)
		return err
	})
	if err != nil {
		h.respondSessionError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sessionResponse(id, result))
}

func (h *Handler) handleSessionFinalize(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var result *session.Result
	err := h.sessions.Do(id, func(s *session.Session) error {
		var err error
		result, err = s.Finalize()
		return err
	})
	if err != nil {
		h.respondSessionError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sessionResponse(id, result))
}

// sessionID parses the session ID path variable, writing the error
// response itself when the ID is malformed.
func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid session id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondSessionError(w http.ResponseWriter, err error) {
	switch {
	case err == session.ErrFinished || err == session.ErrNoPrediction:
		respondError(w, http.StatusConflict, err.Error())
	case strings.HasPrefix(err.Error(), "unknown session"):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func sessionResponse(id uuid.UUID, result *session.Result) models.SessionResponse {
	return models.SessionResponse{
		ID:            id.String(),
		State:         result.State,
		Round:         result.Round,
		Confidence:    result.Confidence,
		Candidates:    result.Candidates,
		ValidSymptoms: result.ValidSymptoms,
		InvalidTerms:  result.InvalidTerms,
		Severity:      &result.Severity,
		Suggestions:   result.Suggestions,
		Diet:          result.Diet,
		BestEffort:    result.BestEffort,
		Disclaimer:    Disclaimer,
	}
}

// cleanSymptoms trims entries and drops empties; an empty or missing
// symptom list is rejected before it reaches the core.
func cleanSymptoms(symptoms []string) []string {
	out := make([]string, 0, len(symptoms))
	for _, s := range symptoms {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
