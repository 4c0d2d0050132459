package handlers

import (
	"net/http"
	"time"

	"github.com/sehat-ai/sehat-backend/internal/application/services"
	"github.com/sehat-ai/sehat-backend/internal/domain/entities"
)

// HeatmapHandler serves the search demand heatmap.
type HeatmapHandler struct {
	heatmap *services.HeatmapService
}

// NewHeatmapHandler creates a new heatmap handler.
func NewHeatmapHandler(heatmap *services.HeatmapService) *HeatmapHandler {
	return &HeatmapHandler{heatmap: heatmap}
}

// Get handles GET /api/analytics/heatmap. The window parameter accepts
// Go duration syntax ("1h", "24h"); absent means the default window.
func (h *HeatmapHandler) Get(w http.ResponseWriter, r *http.Request) {
	var window time.Duration
	if raw := r.URL.Query().Get("window"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			respondWithError(w, http.StatusBadRequest, "window must be a positive duration")
			return
		}
		window = parsed
	}

	cells, err := h.heatmap.Aggregate(r.Context(), window)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	if cells == nil {
		cells = []*entities.HeatmapCell{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"cells": cells,
		"count": len(cells),
	})
}
