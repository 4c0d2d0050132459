package providers

import (
	"context"

	"github.com/sehat-ai/sehat-backend/internal/domain/entities"
)

// PlaceDetails is the per-candidate detail lookup result used to enrich
// a shortlist after the initial search.
type PlaceDetails struct {
	OpenStatus  entities.OpenStatus
	PhoneNumber string
	Website     string
	MapsURL     string
}

// MapProvider defines the map capability surface the ranking and
// routing logic depends on. Core services never touch a maps SDK
// directly so they stay testable against a fake provider.
type MapProvider interface {
	// TextSearch searches places by free-text query around a center
	TextSearch(ctx context.Context, query string, center entities.Location, radiusKm float64) ([]*entities.Facility, error)

	// NearbySearch searches places by category around a center; used as
	// the one broadening fallback when text search yields nothing
	NearbySearch(ctx context.Context, center entities.Location, radiusKm float64, category string) ([]*entities.Facility, error)

	// PlaceDetails fetches contact and opening-hours detail for a place
	PlaceDetails(ctx context.Context, placeID string) (*PlaceDetails, error)

	// Directions computes a route from origin to the given place
	Directions(ctx context.Context, origin entities.Location, destPlaceID string, mode entities.TravelMode) (*entities.Route, error)
}
