package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lumilearn/cortex/internal/brain"
	"github.com/lumilearn/cortex/internal/domain"
)

type LearnerHandler struct {
	registry *brain.Registry
}

func NewLearnerHandler(registry *brain.Registry) *LearnerHandler {
	return &LearnerHandler{registry: registry}
}

// Initialize creates (or fetches) the learner's brain and activates it with
// the supplied profile.
func (h *LearnerHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	learnerID := chi.URLParam(r, "id")
	if learnerID == "" {
		writeError(w, http.StatusBadRequest, "learner id is required")
		return
	}

	var profile domain.LearnerProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	profile.ID = learnerID

	b := h.registry.GetOrCreate(learnerID)
	if err := b.Initialize(r.Context(), profile); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to initialize learner")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "learner_id": learnerID})
}

// ProcessInteraction runs the interaction pipeline for one learner turn.
func (h *LearnerHandler) ProcessInteraction(w http.ResponseWriter, r *http.Request) {
	b := h.lookup(w, r)
	if b == nil {
		return
	}

	var req brain.InteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := b.ProcessInteraction(r.Context(), req)
	if err != nil {
		writeBrainError(w, err, "failed to process interaction")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// EndSession summarizes and resets the learner's current session.
func (h *LearnerHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	b := h.lookup(w, r)
	if b == nil {
		return
	}

	summary, err := b.EndSession(r.Context())
	if err != nil {
		writeBrainError(w, err, "failed to end session")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// GetState returns the learner's cognitive state, performance, and session view.
func (h *LearnerHandler) GetState(w http.ResponseWriter, r *http.Request) {
	b := h.lookup(w, r)
	if b == nil {
		return
	}

	view, err := b.GetState()
	if err != nil {
		writeBrainError(w, err, "failed to get state")
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Recall queries the learner's memory tiers.
func (h *LearnerHandler) Recall(w http.ResponseWriter, r *http.Request) {
	b := h.lookup(w, r)
	if b == nil {
		return
	}

	q := r.URL.Query()
	limit := 5
	if s := q.Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	hits, err := b.Retrieve(q.Get("query"), q.Get("topic"), q.Get("skill"), limit)
	if err != nil {
		writeBrainError(w, err, "failed to retrieve memories")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"memories": hits, "count": len(hits)})
}

// lookup resolves the learner's brain, writing a 404 when it does not exist.
func (h *LearnerHandler) lookup(w http.ResponseWriter, r *http.Request) *brain.Brain {
	learnerID := chi.URLParam(r, "id")
	if learnerID == "" {
		writeError(w, http.StatusBadRequest, "learner id is required")
		return nil
	}

	b := h.registry.Get(learnerID)
	if b == nil {
		writeError(w, http.StatusNotFound, "unknown learner")
		return nil
	}
	return b
}

func writeBrainError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrNotInitialized):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrExternalService):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
