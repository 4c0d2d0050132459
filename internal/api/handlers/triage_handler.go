package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/sehat-ai/sehat-backend/internal/application/services"
	"github.com/sehat-ai/sehat-backend/internal/domain/entities"
	"github.com/sehat-ai/sehat-backend/internal/infrastructure/observability"
)

// TriageHandler handles symptom classification and search history.
type TriageHandler struct {
	triage  *services.TriageService
	metrics *observability.Metrics
}

// NewTriageHandler creates a new triage handler.
func NewTriageHandler(triage *services.TriageService, metrics *observability.Metrics) *TriageHandler {
	return &TriageHandler{triage: triage, metrics: metrics}
}

type triageRequest struct {
	Symptoms  string   `json:"symptoms"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Classify handles POST /api/triage.
func (h *TriageHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req triageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var loc *entities.Location
	if req.Latitude != nil && req.Longitude != nil {
		loc = &entities.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	start := time.Now()
	result, err := h.triage.Classify(r.Context(), userID(r), req.Symptoms, loc)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	if h.metrics != nil {
		observability.RecordTriageMetric(r.Context(), h.metrics, string(result.Urgency), time.Since(start))
	}

	respondWithJSON(w, http.StatusOK, result)
}

// History handles GET /api/history.
func (h *TriageHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondWithError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	records, err := h.triage.History(r.Context(), userID(r), limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	if records == nil {
		records = []*entities.SearchRecord{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"searches": records,
		"count":    len(records),
	})
}
