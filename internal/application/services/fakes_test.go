package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sehat-ai/sehat-backend/internal/domain/entities"
	"github.com/sehat-ai/sehat-backend/internal/domain/providers"
)

// fakeMapProvider is an in-memory MapProvider for service tests.
type fakeMapProvider struct {
	mu sync.Mutex

	textResults   []*entities.Facility
	textErr       error
	nearbyResults []*entities.Facility
	nearbyErr     error
	details       map[string]*providers.PlaceDetails
	detailsErr    map[string]error
	durations     map[string]int
	directionsErr map[string]error

	textCalls       int
	nearbyCalls     int
	directionsCalls int
}

func newFakeMapProvider() *fakeMapProvider {
	return &fakeMapProvider{
		details:       make(map[string]*providers.PlaceDetails),
		detailsErr:    make(map[string]error),
		durations:     make(map[string]int),
		directionsErr: make(map[string]error),
	}
}

func (f *fakeMapProvider) TextSearch(ctx context.Context, query string, center entities.Location, radiusKm float64) ([]*entities.Facility, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.textCalls++
	return f.textResults, f.textErr
}

func (f *fakeMapProvider) NearbySearch(ctx context.Context, center entities.Location, radiusKm float64, category string) ([]*entities.Facility, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nearbyCalls++
	return f.nearbyResults, f.nearbyErr
}

func (f *fakeMapProvider) PlaceDetails(ctx context.Context, placeID string) (*providers.PlaceDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.detailsErr[placeID]; ok {
		return nil, err
	}
	if d, ok := f.details[placeID]; ok {
		return d, nil
	}
	return &providers.PlaceDetails{}, nil
}

func (f *fakeMapProvider) Directions(ctx context.Context, origin entities.Location, destPlaceID string, mode entities.TravelMode) (*entities.Route, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.directionsCalls++
	if err, ok := f.directionsErr[destPlaceID]; ok {
		return nil, err
	}
	seconds, ok := f.durations[destPlaceID]
	if !ok {
		return nil, errors.New("no route configured")
	}
	return &entities.Route{
		PlaceID:         destPlaceID,
		Mode:            mode,
		DurationSeconds: seconds,
		DistanceMeters:  seconds * 10,
	}, nil
}

// fakeHistoryRepo is an in-memory SearchHistoryRepository.
type fakeHistoryRepo struct {
	mu      sync.Mutex
	records []*entities.SearchRecord
	saveErr error
}

func (f *fakeHistoryRepo) Save(ctx context.Context, record *entities.SearchRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeHistoryRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*entities.SearchRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.SearchRecord
	for i := len(f.records) - 1; i >= 0 && len(out) < limit; i-- {
		if f.records[i].UserID == userID {
			out = append(out, f.records[i])
		}
	}
	return out, nil
}

func (f *fakeHistoryRepo) ListLocatedSince(ctx context.Context, since time.Time) ([]*entities.SearchRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.SearchRecord
	for _, r := range f.records {
		if r.Location != nil && !r.CreatedAt.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func ptr(v float64) *float64 { return &v }
