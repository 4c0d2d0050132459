package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sehat-ai/sehat-backend/internal/domain/entities"
	"github.com/sehat-ai/sehat-backend/internal/domain/providers"
	"github.com/sehat-ai/sehat-backend/internal/domain/repositories"
	"github.com/sehat-ai/sehat-backend/pkg/ttlcache"
)

const (
	heatmapCacheTTL      = 60 * time.Second
	defaultHeatmapWindow = 24 * time.Hour

	// heatmapCellDegrees is the bucket edge length; 0.01 degrees is
	// roughly a city block at the equator.
	heatmapCellDegrees = 0.01
)

// HeatmapService aggregates located searches into grid cells for the
// demand heatmap. Aggregations are cached briefly since the map view
// polls.
type HeatmapService struct {
	history repositories.SearchHistoryRepository
	cache   *ttlcache.Cache[[]*entities.HeatmapCell]
	clock   func() time.Time
}

// NewHeatmapService creates a new heatmap service
func NewHeatmapService(history repositories.SearchHistoryRepository) *HeatmapService {
	return &HeatmapService{
		history: history,
		cache:   ttlcache.New[[]*entities.HeatmapCell](),
		clock:   time.Now,
	}
}

// ConsumeEvents subscribes to the search event channel and drops
// cached aggregations whenever a located search arrives, so the next
// poll reflects it instead of waiting out the cache TTL.
func (s *HeatmapService) ConsumeEvents(ctx context.Context, bus providers.EventBus) error {
	events, err := bus.Subscribe(ctx, providers.EventChannelSearches)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				if event.Latitude != nil && event.Longitude != nil {
					s.cache.Purge()
				}
			}
		}
	}()

	return nil
}

// Aggregate returns heatmap cells for searches within the window. A
// zero window defaults to 24 hours.
func (s *HeatmapService) Aggregate(ctx context.Context, window time.Duration) ([]*entities.HeatmapCell, error) {
	if window <= 0 {
		window = defaultHeatmapWindow
	}

	key := fmt.Sprintf("heatmap:%s", window)
	return s.cache.GetOrCompute(key, heatmapCacheTTL, func() ([]*entities.HeatmapCell, error) {
		records, err := s.history.ListLocatedSince(ctx, s.clock().Add(-window))
		if err != nil {
			return nil, err
		}
		return bucketRecords(records), nil
	})
}

func bucketRecords(records []*entities.SearchRecord) []*entities.HeatmapCell {
	cells := make(map[string]*entities.HeatmapCell)

	for _, r := range records {
		if r.Location == nil {
			continue
		}

		lat := snapToCell(r.Location.Latitude)
		lng := snapToCell(r.Location.Longitude)
		key := fmt.Sprintf("%.2f:%.2f", lat, lng)

		cell, ok := cells[key]
		if !ok {
			cell = &entities.HeatmapCell{
				Latitude:  lat,
				Longitude: lng,
				ByUrgency: make(map[entities.Urgency]int),
			}
			cells[key] = cell
		}
		cell.Count++
		cell.ByUrgency[r.Result.Urgency]++
	}

	out := make([]*entities.HeatmapCell, 0, len(cells))
	for _, c := range cells {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

func snapToCell(degrees float64) float64 {
	return math.Floor(degrees/heatmapCellDegrees) * heatmapCellDegrees
}
