package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sehat-ai/sehat-backend/internal/domain/entities"
	apperrors "github.com/sehat-ai/sehat-backend/pkg/errors"
)

// userIDHeader carries the caller's identity. Authentication happens at
// the edge; this service only keys storage by the identifier.
const userIDHeader = "X-User-ID"

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps AppError types to HTTP status codes; any
// other error becomes a 500 with a generic message.
func respondWithAppError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Type == apperrors.ErrorTypeInternal || appErr.Type == apperrors.ErrorTypeExternal {
			log.Error().Err(err).Msg("request failed")
		}
		respondWithError(w, appErr.HTTPStatus(), appErr.Message)
		return
	}

	log.Error().Err(err).Msg("request failed")
	respondWithError(w, http.StatusInternalServerError, "internal server error")
}

func userID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(userIDHeader))
}

// queryLocation parses lat/lng query parameters.
func queryLocation(r *http.Request) (entities.Location, error) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		return entities.Location{}, errors.New("lat parameter is required and must be a number")
	}
	lng, err := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil {
		return entities.Location{}, errors.New("lng parameter is required and must be a number")
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return entities.Location{}, errors.New("coordinates are out of range")
	}
	return entities.Location{Latitude: lat, Longitude: lng}, nil
}
