package geolocation

import (
	"context"
	"fmt"
	"math"

	"github.com/sehat-ai/sehat-backend/internal/domain/entities"
	"github.com/sehat-ai/sehat-backend/internal/domain/providers"
)

// MockMapProvider is a deterministic in-process MapProvider used when no
// Google Maps API key is configured. It fabricates a small ring of
// facilities around the requested center so the rest of the system can
// be exercised end to end in development.
type MockMapProvider struct{}

// NewMockMapProvider creates a new mock map provider.
func NewMockMapProvider() *MockMapProvider {
	return &MockMapProvider{}
}

var mockFacilityNames = []string{
	"City General Hospital",
	"St. Mary's Medical Center",
	"Sunrise Community Clinic",
	"Lakeside Teaching Hospital",
	"Greenfield Specialty Hospital",
	"Unity Children's Hospital",
}

// TextSearch returns the fabricated ring regardless of query.
func (m *MockMapProvider) TextSearch(ctx context.Context, query string, center entities.Location, radiusKm float64) ([]*entities.Facility, error) {
	return m.ring(center, radiusKm), nil
}

// NearbySearch returns the same fabricated ring.
func (m *MockMapProvider) NearbySearch(ctx context.Context, center entities.Location, radiusKm float64, category string) ([]*entities.Facility, error) {
	return m.ring(center, radiusKm), nil
}

// PlaceDetails reports alternating open/closed status so ranking paths
// that depend on hours are reachable in development.
func (m *MockMapProvider) PlaceDetails(ctx context.Context, placeID string) (*providers.PlaceDetails, error) {
	status := entities.StatusOpen
	if len(placeID) > 0 && placeID[len(placeID)-1]%3 == 0 {
		status = entities.StatusClosed
	}
	return &providers.PlaceDetails{
		OpenStatus:  status,
		PhoneNumber: "+1-555-0100",
		Website:     "https://example.com/" + placeID,
		MapsURL:     "https://maps.example.com/" + placeID,
	}, nil
}

// Directions fabricates a route whose duration grows with the index
// encoded in the place ID, so fastest-route selection is deterministic.
func (m *MockMapProvider) Directions(ctx context.Context, origin entities.Location, destPlaceID string, mode entities.TravelMode) (*entities.Route, error) {
	seed := 0
	if n := len(destPlaceID); n > 0 {
		seed = int(destPlaceID[n-1])
	}

	meters := 1500 + seed%len(mockFacilityNames)*900
	seconds := meters / metersPerSecond(mode)

	return &entities.Route{
		PlaceID:         destPlaceID,
		Mode:            mode,
		DistanceMeters:  meters,
		DurationSeconds: seconds,
		DistanceText:    fmt.Sprintf("%.1f km", float64(meters)/1000),
		DurationText:    fmt.Sprintf("%d min", seconds/60),
		Steps: []entities.RouteStep{
			{Instruction: "Head north", DistanceText: "500 m"},
			{Instruction: "Arrive at destination", DistanceText: fmt.Sprintf("%.1f km", float64(meters-500)/1000)},
		},
	}, nil
}

// ring places one facility per mock name evenly spaced on a circle at
// half the search radius.
func (m *MockMapProvider) ring(center entities.Location, radiusKm float64) []*entities.Facility {
	out := make([]*entities.Facility, 0, len(mockFacilityNames))
	for i, name := range mockFacilityNames {
		angle := 2 * math.Pi * float64(i) / float64(len(mockFacilityNames))
		offsetDeg := radiusKm / 2 / 111.0

		rating := 3.5 + 0.3*float64(i%5)
		out = append(out, &entities.Facility{
			PlaceID: fmt.Sprintf("mock-place-%d", i),
			Name:    name,
			Address: fmt.Sprintf("%d Health Avenue", 100+i),
			Location: entities.Location{
				Latitude:  center.Latitude + offsetDeg*math.Cos(angle),
				Longitude: center.Longitude + offsetDeg*math.Sin(angle),
			},
			Rating:      &rating,
			RatingCount: 40 + 25*i,
		})
	}
	return out
}

func metersPerSecond(mode entities.TravelMode) int {
	switch mode {
	case entities.ModeWalking:
		return 1
	case entities.ModeBicycling:
		return 4
	default:
		return 11
	}
}
