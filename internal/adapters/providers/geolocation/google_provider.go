package geolocation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"googlemaps.github.io/maps"

	"github.com/sehat-ai/sehat-backend/internal/domain/entities"
	"github.com/sehat-ai/sehat-backend/internal/domain/providers"
)

// GoogleMapProvider implements MapProvider on top of the official Google
// Maps Go client (Places text search, Places nearby search, Place
// Details, Directions).
type GoogleMapProvider struct {
	client *maps.Client
}

// NewGoogleMapProvider creates a new Google map provider.
func NewGoogleMapProvider(apiKey string) (*GoogleMapProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("google maps api key is required")
	}

	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create google maps client: %w", err)
	}
	return &GoogleMapProvider{client: client}, nil
}

// TextSearch runs a Places text search biased to the given center and
// radius.
func (g *GoogleMapProvider) TextSearch(ctx context.Context, query string, center entities.Location, radiusKm float64) ([]*entities.Facility, error) {
	resp, err := g.client.TextSearch(ctx, &maps.TextSearchRequest{
		Query:    query,
		Location: &maps.LatLng{Lat: center.Latitude, Lng: center.Longitude},
		Radius:   uint(radiusKm * 1000),
	})
	if err != nil {
		return nil, fmt.Errorf("places text search failed: %w", err)
	}

	return searchResultsToFacilities(resp.Results), nil
}

// NearbySearch runs a Places nearby search for a facility category.
func (g *GoogleMapProvider) NearbySearch(ctx context.Context, center entities.Location, radiusKm float64, category string) ([]*entities.Facility, error) {
	req := &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: center.Latitude, Lng: center.Longitude},
		Radius:   uint(radiusKm * 1000),
	}
	if placeType, err := maps.ParsePlaceType(category); err == nil {
		req.Type = placeType
	} else {
		req.Keyword = category
	}

	resp, err := g.client.NearbySearch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("places nearby search failed: %w", err)
	}

	return searchResultsToFacilities(resp.Results), nil
}

// PlaceDetails fetches open-now status and contact fields for one place.
func (g *GoogleMapProvider) PlaceDetails(ctx context.Context, placeID string) (*providers.PlaceDetails, error) {
	resp, err := g.client.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
		PlaceID: placeID,
		Fields: []maps.PlaceDetailsFieldMask{
			maps.PlaceDetailsFieldMaskOpeningHours,
			maps.PlaceDetailsFieldMaskFormattedPhoneNumber,
			maps.PlaceDetailsFieldMaskWebsite,
			maps.PlaceDetailsFieldMaskURL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("place details request failed: %w", err)
	}

	details := &providers.PlaceDetails{
		OpenStatus:  openStatus(resp.OpeningHours),
		PhoneNumber: resp.FormattedPhoneNumber,
		Website:     resp.Website,
		MapsURL:     resp.URL,
	}
	return details, nil
}

// Directions computes one route from origin to the place under the
// given travel mode.
func (g *GoogleMapProvider) Directions(ctx context.Context, origin entities.Location, destPlaceID string, mode entities.TravelMode) (*entities.Route, error) {
	routes, _, err := g.client.Directions(ctx, &maps.DirectionsRequest{
		Origin:      fmt.Sprintf("%f,%f", origin.Latitude, origin.Longitude),
		Destination: "place_id:" + destPlaceID,
		Mode:        travelMode(mode),
	})
	if err != nil {
		return nil, fmt.Errorf("directions request failed: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return nil, fmt.Errorf("no route found to place %s", destPlaceID)
	}

	leg := routes[0].Legs[0]
	route := &entities.Route{
		PlaceID:         destPlaceID,
		Mode:            mode,
		DistanceMeters:  leg.Distance.Meters,
		DurationSeconds: int(leg.Duration.Seconds()),
		DistanceText:    leg.Distance.HumanReadable,
		DurationText:    formatDuration(leg.Duration),
	}
	for _, step := range leg.Steps {
		route.Steps = append(route.Steps, entities.RouteStep{
			Instruction:  stripHTML(step.HTMLInstructions),
			DistanceText: step.Distance.HumanReadable,
		})
	}
	return route, nil
}

func searchResultsToFacilities(results []maps.PlacesSearchResult) []*entities.Facility {
	facilities := make([]*entities.Facility, 0, len(results))
	for _, r := range results {
		f := &entities.Facility{
			PlaceID: r.PlaceID,
			Name:    r.Name,
			Address: r.FormattedAddress,
			Location: entities.Location{
				Latitude:  r.Geometry.Location.Lat,
				Longitude: r.Geometry.Location.Lng,
			},
			RatingCount: r.UserRatingsTotal,
			OpenStatus:  openStatus(r.OpeningHours),
		}
		if r.Rating > 0 {
			rating := float64(r.Rating)
			f.Rating = &rating
		}
		facilities = append(facilities, f)
	}
	return facilities
}

// openStatus maps the optional open_now field to the tri-state status.
// Absent hours data stays unknown rather than defaulting to closed.
func openStatus(hours *maps.OpeningHours) entities.OpenStatus {
	if hours == nil || hours.OpenNow == nil {
		return entities.StatusUnknown
	}
	if *hours.OpenNow {
		return entities.StatusOpen
	}
	return entities.StatusClosed
}

func travelMode(mode entities.TravelMode) maps.Mode {
	switch mode {
	case entities.ModeBicycling:
		return maps.TravelModeBicycling
	case entities.ModeWalking:
		return maps.TravelModeWalking
	default:
		return maps.TravelModeDriving
	}
}

func formatDuration(d time.Duration) string {
	minutes := int(d.Round(time.Minute).Minutes())
	if minutes < 1 {
		minutes = 1
	}
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%d hr %d min", minutes/60, minutes%60)
}

// stripHTML removes the markup Google embeds in step instructions,
// inserting spaces so adjacent words do not run together.
func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
			b.WriteRune(' ')
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
