package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sehat-ai/sehat-backend/internal/application/services"
	"github.com/sehat-ai/sehat-backend/internal/domain/entities"
)

// NavigationHandler manages live navigation sessions over REST.
type NavigationHandler struct {
	navigation *services.NavigationService
}

// NewNavigationHandler creates a new navigation handler.
func NewNavigationHandler(navigation *services.NavigationService) *NavigationHandler {
	return &NavigationHandler{navigation: navigation}
}

type startSessionRequest struct {
	PlaceID   string  `json:"place_id"`
	Mode      string  `json:"mode"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type updateSessionRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Mode      string  `json:"mode"`
}

// Start handles POST /api/navigation/sessions.
func (h *NavigationHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.navigation.Start(
		r.Context(),
		userID(r),
		strings.TrimSpace(req.PlaceID),
		entities.ParseTravelMode(req.Mode),
		entities.Location{Latitude: req.Latitude, Longitude: req.Longitude},
	)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, session)
}

// Update handles PATCH /api/navigation/sessions/{id}.
func (h *NavigationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.navigation.Update(
		r.Context(),
		r.PathValue("id"),
		entities.Location{Latitude: req.Latitude, Longitude: req.Longitude},
		entities.ParseTravelMode(req.Mode),
	)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, session)
}

// Stop handles DELETE /api/navigation/sessions/{id}. Always succeeds;
// stopping twice is fine.
func (h *NavigationHandler) Stop(w http.ResponseWriter, r *http.Request) {
	h.navigation.Stop(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}
