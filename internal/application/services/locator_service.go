package services

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/sehat-ai/sehat-backend/internal/domain/entities"
	"github.com/sehat-ai/sehat-backend/internal/domain/providers"
	apperrors "github.com/sehat-ai/sehat-backend/pkg/errors"
)

// LocatorService converts a triage result plus a user coordinate into
// an ordered, filtered, display-ready facility shortlist.
type LocatorService struct {
	maps providers.MapProvider
}

// NewLocatorService creates a new locator service
func NewLocatorService(maps providers.MapProvider) *LocatorService {
	return &LocatorService{maps: maps}
}

// FindNearby searches candidate facilities around origin, scores and
// ranks them, enriches the top batch with open/closed status, and
// returns the final urgency-bounded shortlist.
func (s *LocatorService) FindNearby(ctx context.Context, origin entities.Location, triage *entities.TriageResult) ([]*entities.Facility, error) {
	radius := triage.Urgency.SearchRadiusKm()

	candidates, err := s.search(ctx, origin, radius, triage)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, apperrors.NewNotFoundError("no facilities found nearby")
	}

	batch := scoreAndSort(origin, candidates)
	if limit := detailBatchSize(triage.Urgency); len(batch) > limit {
		batch = batch[:limit]
	}

	s.enrichDetails(ctx, batch)

	return rankWithStatus(batch, triage.Urgency), nil
}

// search runs the text search and, when it errors or comes back empty,
// a single category nearby-search broadening step. No retries.
func (s *LocatorService) search(ctx context.Context, origin entities.Location, radiusKm float64, triage *entities.TriageResult) ([]*entities.Facility, error) {
	query := buildSearchQuery(triage)

	results, err := s.maps.TextSearch(ctx, query, origin, radiusKm)
	if err == nil && len(results) > 0 {
		return results, nil
	}
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("text search failed, falling back to nearby search")
	}

	category := triage.FacilityType
	if category == "" {
		category = "hospital"
	}

	results, err = s.maps.NearbySearch(ctx, origin, radiusKm, category)
	if err != nil {
		return nil, apperrors.NewExternalError("facility search failed", err)
	}
	return results, nil
}

// enrichDetails fetches open/closed status and contact fields for each
// candidate concurrently, waits for the whole batch, and merges results
// in place. Individual failures leave the candidate's status unknown.
func (s *LocatorService) enrichDetails(ctx context.Context, batch []*entities.Facility) {
	var wg sync.WaitGroup
	for _, f := range batch {
		wg.Add(1)
		go func(f *entities.Facility) {
			defer wg.Done()

			details, err := s.maps.PlaceDetails(ctx, f.PlaceID)
			if err != nil || details == nil {
				if err != nil {
					log.Debug().Err(err).Str("place_id", f.PlaceID).Msg("place details lookup failed")
				}
				return
			}

			f.OpenStatus = details.OpenStatus
			f.PhoneNumber = details.PhoneNumber
			f.Website = details.Website
			f.MapsURL = details.MapsURL
		}(f)
	}
	wg.Wait()
}

// buildSearchQuery assembles the places query from triage keywords and
// department, always anchored by "hospital".
func buildSearchQuery(triage *entities.TriageResult) string {
	parts := make([]string, 0, len(triage.SearchKeywords)+2)
	for _, kw := range triage.SearchKeywords {
		if strings.TrimSpace(kw) != "" {
			parts = append(parts, kw)
		}
	}
	if strings.TrimSpace(triage.Department) != "" {
		parts = append(parts, triage.Department)
	}
	if len(parts) == 0 {
		return "hospital near me"
	}
	return strings.Join(append(parts, "hospital"), " ")
}
