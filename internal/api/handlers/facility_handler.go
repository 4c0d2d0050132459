package handlers

import (
	"net/http"
	"strings"

	"github.com/sehat-ai/sehat-backend/internal/application/services"
	"github.com/sehat-ai/sehat-backend/internal/domain/entities"
)

// FacilityHandler serves ranked facility shortlists.
type FacilityHandler struct {
	locator *services.LocatorService
}

// NewFacilityHandler creates a new facility handler.
func NewFacilityHandler(locator *services.LocatorService) *FacilityHandler {
	return &FacilityHandler{locator: locator}
}

// Nearby handles GET /api/facilities/nearby. The triage fields arrive
// as query parameters so the endpoint stays a cacheable GET.
func (h *FacilityHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	origin, err := queryLocation(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	triage := &entities.TriageResult{
		Urgency:      entities.ParseUrgency(q.Get("urgency")),
		Department:   q.Get("department"),
		FacilityType: q.Get("facility_type"),
	}
	if keywords := strings.TrimSpace(q.Get("keywords")); keywords != "" {
		triage.SearchKeywords = strings.Split(keywords, ",")
	}

	facilities, err := h.locator.FindNearby(r.Context(), origin, triage)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"facilities": facilities,
		"count":      len(facilities),
		"urgency":    triage.Urgency,
	})
}
