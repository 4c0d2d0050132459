package handlers

import (
	"net/http"
	"strings"

	"github.com/sehat-ai/sehat-backend/internal/application/services"
	"github.com/sehat-ai/sehat-backend/internal/domain/entities"
	"github.com/sehat-ai/sehat-backend/internal/domain/providers"
	apperrors "github.com/sehat-ai/sehat-backend/pkg/errors"
)

// RouteHandler serves single-destination routes and fastest-route
// selection over a shortlist.
type RouteHandler struct {
	maps    providers.MapProvider
	fastest *services.FastestRouteService
}

// NewRouteHandler creates a new route handler.
func NewRouteHandler(maps providers.MapProvider, fastest *services.FastestRouteService) *RouteHandler {
	return &RouteHandler{maps: maps, fastest: fastest}
}

// Get handles GET /api/routes.
func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	origin, err := queryLocation(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	placeID := strings.TrimSpace(r.URL.Query().Get("place_id"))
	if placeID == "" {
		respondWithError(w, http.StatusBadRequest, "place_id parameter is required")
		return
	}
	mode := entities.ParseTravelMode(r.URL.Query().Get("mode"))

	route, err := h.maps.Directions(r.Context(), origin, placeID, mode)
	if err != nil {
		respondWithAppError(w, apperrors.NewExternalError("failed to compute route", err))
		return
	}

	respondWithJSON(w, http.StatusOK, route)
}

// Fastest handles GET /api/routes/fastest. place_ids carries the ranked
// shortlist in order; ordering matters because ties go to the earlier
// member.
func (h *RouteHandler) Fastest(w http.ResponseWriter, r *http.Request) {
	origin, err := queryLocation(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	raw := strings.TrimSpace(r.URL.Query().Get("place_ids"))
	if raw == "" {
		respondWithError(w, http.StatusBadRequest, "place_ids parameter is required")
		return
	}

	var shortlist []*entities.Facility
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			shortlist = append(shortlist, &entities.Facility{PlaceID: id})
		}
	}
	mode := entities.ParseTravelMode(r.URL.Query().Get("mode"))

	fastest, err := h.fastest.Find(r.Context(), origin, shortlist, mode)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, fastest)
}
