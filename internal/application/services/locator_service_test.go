package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sehat-ai/sehat-backend/internal/domain/entities"
	"github.com/sehat-ai/sehat-backend/internal/domain/providers"
	apperrors "github.com/sehat-ai/sehat-backend/pkg/errors"
)

var testOrigin = entities.Location{Latitude: 28.6139, Longitude: 77.2090}

func facilityAt(id string, lat, lng float64) *entities.Facility {
	return &entities.Facility{
		PlaceID:  id,
		Name:     "Facility " + id,
		Location: entities.Location{Latitude: lat, Longitude: lng},
	}
}

func TestFindNearby_RanksAndEnriches(t *testing.T) {
	maps := newFakeMapProvider()
	maps.textResults = []*entities.Facility{
		facilityAt("far", 28.70, 77.30),
		facilityAt("near", 28.62, 77.21),
	}
	maps.details["near"] = &providers.PlaceDetails{
		OpenStatus:  entities.StatusOpen,
		PhoneNumber: "+91-11-2345-6789",
	}

	svc := NewLocatorService(maps)
	triage := &entities.TriageResult{Urgency: entities.UrgencyNormal, SearchKeywords: []string{"cardiology"}}

	out, err := svc.FindNearby(context.Background(), testOrigin, triage)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "near", out[0].PlaceID)
	assert.Equal(t, entities.StatusOpen, out[0].OpenStatus)
	assert.Equal(t, "+91-11-2345-6789", out[0].PhoneNumber)
	assert.Greater(t, out[0].Score, out[1].Score)
	assert.Zero(t, maps.nearbyCalls)
}

func TestFindNearby_FallsBackToNearbySearch(t *testing.T) {
	maps := newFakeMapProvider()
	maps.textErr = errors.New("quota exceeded")
	maps.nearbyResults = []*entities.Facility{facilityAt("a", 28.62, 77.21)}

	svc := NewLocatorService(maps)

	out, err := svc.FindNearby(context.Background(), testOrigin, &entities.TriageResult{Urgency: entities.UrgencyNormal})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 1, maps.textCalls)
	assert.Equal(t, 1, maps.nearbyCalls)
}

func TestFindNearby_FallsBackWhenTextSearchEmpty(t *testing.T) {
	maps := newFakeMapProvider()
	maps.nearbyResults = []*entities.Facility{facilityAt("a", 28.62, 77.21)}

	svc := NewLocatorService(maps)

	out, err := svc.FindNearby(context.Background(), testOrigin, &entities.TriageResult{Urgency: entities.UrgencyUrgent})
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, 1, maps.nearbyCalls)
}

func TestFindNearby_NoResultsIsNotFound(t *testing.T) {
	maps := newFakeMapProvider()

	svc := NewLocatorService(maps)

	_, err := svc.FindNearby(context.Background(), testOrigin, &entities.TriageResult{Urgency: entities.UrgencyNormal})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestFindNearby_BothSearchesFailIsExternal(t *testing.T) {
	maps := newFakeMapProvider()
	maps.textErr = errors.New("quota exceeded")
	maps.nearbyErr = errors.New("quota exceeded")

	svc := NewLocatorService(maps)

	_, err := svc.FindNearby(context.Background(), testOrigin, &entities.TriageResult{Urgency: entities.UrgencyNormal})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeExternal, appErr.Type)
}

func TestFindNearby_EmergencyShortlist(t *testing.T) {
	maps := newFakeMapProvider()
	for i := 0; i < 7; i++ {
		f := facilityAt(fmt.Sprintf("f%d", i), 28.62+float64(i)*0.005, 77.21)
		maps.textResults = append(maps.textResults, f)
	}
	// Closest candidate is confirmed closed and must not appear.
	maps.details["f0"] = &providers.PlaceDetails{OpenStatus: entities.StatusClosed}
	maps.details["f1"] = &providers.PlaceDetails{OpenStatus: entities.StatusOpen}

	svc := NewLocatorService(maps)

	out, err := svc.FindNearby(context.Background(), testOrigin, &entities.TriageResult{Urgency: entities.UrgencyEmergency})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "f1", out[0].PlaceID)
	for _, f := range out {
		assert.NotEqual(t, "f0", f.PlaceID)
		assert.NotEqual(t, entities.StatusClosed, f.OpenStatus)
	}
}

func TestFindNearby_DetailFailureLeavesStatusUnknown(t *testing.T) {
	maps := newFakeMapProvider()
	maps.textResults = []*entities.Facility{facilityAt("a", 28.62, 77.21)}
	maps.detailsErr["a"] = errors.New("details unavailable")

	svc := NewLocatorService(maps)

	out, err := svc.FindNearby(context.Background(), testOrigin, &entities.TriageResult{Urgency: entities.UrgencyNormal})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, entities.StatusUnknown, out[0].OpenStatus)
}

func TestBuildSearchQuery(t *testing.T) {
	assert.Equal(t, "chest pain cardiology Cardiology hospital", buildSearchQuery(&entities.TriageResult{
		SearchKeywords: []string{"chest pain", "cardiology"},
		Department:     "Cardiology",
	}))
	assert.Equal(t, "Cardiology hospital", buildSearchQuery(&entities.TriageResult{Department: "Cardiology"}))
	assert.Equal(t, "hospital near me", buildSearchQuery(&entities.TriageResult{}))
	assert.Equal(t, "hospital near me", buildSearchQuery(&entities.TriageResult{SearchKeywords: []string{"  "}}))
}
