package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sehat-ai/sehat-backend/internal/domain/entities"
	"github.com/sehat-ai/sehat-backend/internal/domain/providers"
	apperrors "github.com/sehat-ai/sehat-backend/pkg/errors"
	"github.com/sehat-ai/sehat-backend/pkg/ttlcache"
)

// fastestRouteTTL is how long a winning selection stays valid. A repeat
// request inside the window returns the cached result without touching
// the directions API.
const fastestRouteTTL = 30 * time.Second

// fastestRouteFanout bounds how many shortlist members are probed.
const fastestRouteFanout = 6

// FastestRouteService picks, among a ranked shortlist, the facility
// with the minimum travel duration under the selected mode.
type FastestRouteService struct {
	maps       providers.MapProvider
	cache      *ttlcache.Cache[*entities.FastestRoute]
	ttl        time.Duration
	generation atomic.Uint64
	clock      func() time.Time
}

// NewFastestRouteService creates a new fastest-route service
func NewFastestRouteService(maps providers.MapProvider) *FastestRouteService {
	return &FastestRouteService{
		maps:  maps,
		cache: ttlcache.New[*entities.FastestRoute](),
		ttl:   fastestRouteTTL,
		clock: time.Now,
	}
}

// Find fans out one directions request per shortlist member, discards
// failures, and selects the minimum by duration. Ties go to the member
// appearing earlier in the shortlist, which is itself score-ordered, so
// selection is deterministic.
func (s *FastestRouteService) Find(ctx context.Context, origin entities.Location, shortlist []*entities.Facility, mode entities.TravelMode) (*entities.FastestRoute, error) {
	if len(shortlist) == 0 {
		return nil, apperrors.NewValidationError("shortlist is empty")
	}

	batch := shortlist
	if len(batch) > fastestRouteFanout {
		batch = batch[:fastestRouteFanout]
	}

	key := fastestRouteKey(origin, mode, batch)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	epoch := s.generation.Add(1)

	routes := make([]*entities.Route, len(batch))
	var wg sync.WaitGroup
	for i, f := range batch {
		wg.Add(1)
		go func(i int, f *entities.Facility) {
			defer wg.Done()

			route, err := s.maps.Directions(ctx, origin, f.PlaceID, mode)
			if err != nil {
				log.Debug().Err(err).Str("place_id", f.PlaceID).Msg("directions request failed")
				return
			}
			routes[i] = route
		}(i, f)
	}
	wg.Wait()

	var winner *entities.FastestRoute
	for i, route := range routes {
		if route == nil {
			continue
		}
		if winner == nil || route.DurationSeconds < winner.Route.DurationSeconds {
			winner = &entities.FastestRoute{
				Facility:   batch[i],
				Route:      route,
				SelectedAt: s.clock(),
			}
		}
	}

	if winner == nil {
		return nil, apperrors.NewNotFoundError("could not find a route to any facility")
	}

	// A newer request superseded this one while the batch was in
	// flight; hand the result back but do not let it overwrite the
	// fresher cache entry.
	if s.generation.Load() == epoch {
		s.cache.Set(key, winner, s.ttl)
	}

	return winner, nil
}

// Invalidate drops all cached selections. Called when the user manually
// picks a different facility or changes travel mode.
func (s *FastestRouteService) Invalidate() {
	s.cache.Purge()
}

func fastestRouteKey(origin entities.Location, mode entities.TravelMode, batch []*entities.Facility) string {
	ids := make([]string, len(batch))
	for i, f := range batch {
		ids[i] = f.PlaceID
	}
	return fmt.Sprintf("%.4f:%.4f:%s:%s", origin.Latitude, origin.Longitude, mode, strings.Join(ids, ","))
}
