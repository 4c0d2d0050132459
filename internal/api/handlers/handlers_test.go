package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sehat-ai/sehat-backend/internal/application/services"
	"github.com/sehat-ai/sehat-backend/internal/domain/entities"
	"github.com/sehat-ai/sehat-backend/internal/domain/providers"
)

// stubMapProvider returns canned data for handler tests.
type stubMapProvider struct {
	facilities []*entities.Facility
	route      *entities.Route
}

func (s *stubMapProvider) TextSearch(ctx context.Context, query string, center entities.Location, radiusKm float64) ([]*entities.Facility, error) {
	return s.facilities, nil
}

func (s *stubMapProvider) NearbySearch(ctx context.Context, center entities.Location, radiusKm float64, category string) ([]*entities.Facility, error) {
	return s.facilities, nil
}

func (s *stubMapProvider) PlaceDetails(ctx context.Context, placeID string) (*providers.PlaceDetails, error) {
	return &providers.PlaceDetails{OpenStatus: entities.StatusOpen}, nil
}

func (s *stubMapProvider) Directions(ctx context.Context, origin entities.Location, destPlaceID string, mode entities.TravelMode) (*entities.Route, error) {
	route := *s.route
	route.PlaceID = destPlaceID
	route.Mode = mode
	return &route, nil
}

type stubClassifier struct {
	result *entities.TriageResult
}

func (s *stubClassifier) Classify(ctx context.Context, symptoms string) (*entities.TriageResult, error) {
	out := *s.result
	return &out, nil
}

type stubHistoryRepo struct {
	records []*entities.SearchRecord
}

func (s *stubHistoryRepo) Save(ctx context.Context, record *entities.SearchRecord) error {
	s.records = append(s.records, record)
	return nil
}

func (s *stubHistoryRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*entities.SearchRecord, error) {
	return s.records, nil
}

func (s *stubHistoryRepo) ListLocatedSince(ctx context.Context, since time.Time) ([]*entities.SearchRecord, error) {
	return s.records, nil
}

func testMapProvider() *stubMapProvider {
	return &stubMapProvider{
		facilities: []*entities.Facility{
			{PlaceID: "p1", Name: "City General", Location: entities.Location{Latitude: 28.62, Longitude: 77.21}},
		},
		route: &entities.Route{DurationSeconds: 600, DistanceMeters: 5000},
	}
}

func TestTriageHandler_Classify(t *testing.T) {
	classifier := &stubClassifier{result: &entities.TriageResult{
		Specialist: "Cardiologist",
		Urgency:    entities.UrgencyEmergency,
	}}
	handler := NewTriageHandler(services.NewTriageService(classifier, nil, nil), nil)

	body := `{"symptoms":"chest pain","latitude":28.61,"longitude":77.21}`
	req := httptest.NewRequest(http.MethodPost, "/api/triage", strings.NewReader(body))
	req.Header.Set(userIDHeader, "user-1")
	rec := httptest.NewRecorder()

	handler.Classify(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result entities.TriageResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "Cardiologist", result.Specialist)
	assert.Equal(t, entities.UrgencyEmergency, result.Urgency)
}

func TestTriageHandler_ClassifyRejectsEmptySymptoms(t *testing.T) {
	handler := NewTriageHandler(services.NewTriageService(&stubClassifier{result: &entities.TriageResult{}}, nil, nil), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/triage", strings.NewReader(`{"symptoms":""}`))
	rec := httptest.NewRecorder()

	handler.Classify(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTriageHandler_ClassifyRejectsBadBody(t *testing.T) {
	handler := NewTriageHandler(services.NewTriageService(&stubClassifier{result: &entities.TriageResult{}}, nil, nil), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/triage", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	handler.Classify(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTriageHandler_HistoryRequiresUser(t *testing.T) {
	handler := NewTriageHandler(services.NewTriageService(&stubClassifier{result: &entities.TriageResult{}}, &stubHistoryRepo{}, nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rec := httptest.NewRecorder()

	handler.History(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTriageHandler_HistoryReturnsRecords(t *testing.T) {
	repo := &stubHistoryRepo{records: []*entities.SearchRecord{
		{ID: "r1", UserID: "user-1", Symptoms: "fever"},
	}}
	handler := NewTriageHandler(services.NewTriageService(&stubClassifier{result: &entities.TriageResult{}}, repo, nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/history?limit=5", nil)
	req.Header.Set(userIDHeader, "user-1")
	rec := httptest.NewRecorder()

	handler.History(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Searches []*entities.SearchRecord `json:"searches"`
		Count    int                      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 1, payload.Count)
	assert.Equal(t, "fever", payload.Searches[0].Symptoms)
}

func TestFacilityHandler_NearbyRequiresCoordinates(t *testing.T) {
	handler := NewFacilityHandler(services.NewLocatorService(testMapProvider()))

	req := httptest.NewRequest(http.MethodGet, "/api/facilities/nearby", nil)
	rec := httptest.NewRecorder()

	handler.Nearby(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFacilityHandler_Nearby(t *testing.T) {
	handler := NewFacilityHandler(services.NewLocatorService(testMapProvider()))

	req := httptest.NewRequest(http.MethodGet, "/api/facilities/nearby?lat=28.61&lng=77.21&urgency=urgent&keywords=cardiology", nil)
	rec := httptest.NewRecorder()

	handler.Nearby(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Facilities []*entities.Facility `json:"facilities"`
		Urgency    entities.Urgency     `json:"urgency"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Facilities, 1)
	assert.Equal(t, "p1", payload.Facilities[0].PlaceID)
	assert.Equal(t, entities.UrgencyUrgent, payload.Urgency)
}

func TestRouteHandler_Get(t *testing.T) {
	maps := testMapProvider()
	handler := NewRouteHandler(maps, services.NewFastestRouteService(maps))

	req := httptest.NewRequest(http.MethodGet, "/api/routes?lat=28.61&lng=77.21&place_id=p1&mode=walking", nil)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var route entities.Route
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &route))
	assert.Equal(t, "p1", route.PlaceID)
	assert.Equal(t, entities.ModeWalking, route.Mode)
}

func TestRouteHandler_GetRequiresPlaceID(t *testing.T) {
	maps := testMapProvider()
	handler := NewRouteHandler(maps, services.NewFastestRouteService(maps))

	req := httptest.NewRequest(http.MethodGet, "/api/routes?lat=28.61&lng=77.21", nil)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouteHandler_Fastest(t *testing.T) {
	maps := testMapProvider()
	handler := NewRouteHandler(maps, services.NewFastestRouteService(maps))

	req := httptest.NewRequest(http.MethodGet, "/api/routes/fastest?lat=28.61&lng=77.21&place_ids=p1,p2&mode=driving", nil)
	rec := httptest.NewRecorder()

	handler.Fastest(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var fastest entities.FastestRoute
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fastest))
	require.NotNil(t, fastest.Route)
	assert.Equal(t, 600, fastest.Route.DurationSeconds)
}

func TestRouteHandler_FastestRequiresPlaceIDs(t *testing.T) {
	maps := testMapProvider()
	handler := NewRouteHandler(maps, services.NewFastestRouteService(maps))

	req := httptest.NewRequest(http.MethodGet, "/api/routes/fastest?lat=28.61&lng=77.21", nil)
	rec := httptest.NewRecorder()

	handler.Fastest(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNavigationHandler_Lifecycle(t *testing.T) {
	maps := testMapProvider()
	svc := services.NewNavigationService(maps)
	handler := NewNavigationHandler(svc)

	// Start
	body := `{"place_id":"p1","mode":"driving","latitude":28.61,"longitude":77.21}`
	req := httptest.NewRequest(http.MethodPost, "/api/navigation/sessions", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Start(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var session services.NavigationSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	require.NotEmpty(t, session.ID)

	// Update through a mux so the path value binds.
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /api/navigation/sessions/{id}", handler.Update)
	mux.HandleFunc("DELETE /api/navigation/sessions/{id}", handler.Stop)

	update := `{"latitude":28.63,"longitude":77.22,"mode":"walking"}`
	req = httptest.NewRequest(http.MethodPatch, "/api/navigation/sessions/"+session.ID, strings.NewReader(update))
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var updated services.NavigationSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, entities.ModeWalking, updated.Mode)

	// Stop, then updating again is a 404.
	req = httptest.NewRequest(http.MethodDelete, "/api/navigation/sessions/"+session.ID, nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodPatch, "/api/navigation/sessions/"+session.ID, strings.NewReader(update))
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHeatmapHandler_RejectsBadWindow(t *testing.T) {
	handler := NewHeatmapHandler(services.NewHeatmapService(&stubHistoryRepo{}))

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/heatmap?window=yesterday", nil)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHeatmapHandler_Get(t *testing.T) {
	repo := &stubHistoryRepo{records: []*entities.SearchRecord{
		{
			ID:        "r1",
			Result:    entities.TriageResult{Urgency: entities.UrgencyNormal},
			Location:  &entities.Location{Latitude: 28.61, Longitude: 77.21},
			CreatedAt: time.Now(),
		},
	}}
	handler := NewHeatmapHandler(services.NewHeatmapService(repo))

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/heatmap?window=1h", nil)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Cells []*entities.HeatmapCell `json:"cells"`
		Count int                     `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 1, payload.Count)
}
