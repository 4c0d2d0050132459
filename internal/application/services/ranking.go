package services

import (
	"math"
	"sort"

	"github.com/sehat-ai/sehat-backend/internal/domain/entities"
)

const earthRadiusKm = 6371.0

// Shortlist sizes. The detail batch carries extra slots because the
// open/closed enrichment may invalidate later choices.
const (
	detailBatchEmergency = 6
	detailBatchDefault   = 8
	finalSizeEmergency   = 3
	finalSizeDefault     = 5
)

// HaversineKm returns the great-circle distance between two coordinates
// in kilometers.
func HaversineKm(a, b entities.Location) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLng := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// CompositeScore combines inverse distance, rating, and a popularity
// bonus. Distance dominates through inverse weighting; the denominator
// is capped at 0.1 km so a facility next door cannot blow up the score.
// A missing rating counts as a neutral 3.0.
func CompositeScore(distanceKm float64, rating *float64, ratingCount int) float64 {
	distanceScore := 5 / math.Max(distanceKm, 0.1)

	ratingScore := 3.0
	if rating != nil {
		ratingScore = *rating
	}

	popularityBonus := 0.0
	if ratingCount > 50 {
		popularityBonus = 1
	}

	return distanceScore + ratingScore + popularityBonus
}

// detailBatchSize returns how many candidates to fetch details for.
func detailBatchSize(urgency entities.Urgency) int {
	if urgency == entities.UrgencyEmergency {
		return detailBatchEmergency
	}
	return detailBatchDefault
}

// finalListSize returns the final shortlist bound.
func finalListSize(urgency entities.Urgency) int {
	if urgency == entities.UrgencyEmergency {
		return finalSizeEmergency
	}
	return finalSizeDefault
}

// scoreAndSort fills DistanceKm and Score on each candidate and sorts
// descending by score.
func scoreAndSort(origin entities.Location, candidates []*entities.Facility) []*entities.Facility {
	scored := make([]*entities.Facility, 0, len(candidates))
	for _, f := range candidates {
		f.DistanceKm = HaversineKm(origin, f.Location)
		f.Score = CompositeScore(f.DistanceKm, f.Rating, f.RatingCount)
		scored = append(scored, f)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}

// rankWithStatus re-sorts an enriched batch using open/closed status,
// drops known-closed facilities under emergency urgency, and truncates
// to the final shortlist size. Unknown status is neutral: lacking hours
// data never pushes a facility down or out during an emergency.
func rankWithStatus(candidates []*entities.Facility, urgency entities.Urgency) []*entities.Facility {
	ranked := make([]*entities.Facility, 0, len(candidates))
	for _, f := range candidates {
		if urgency == entities.UrgencyEmergency && f.OpenStatus == entities.StatusClosed {
			continue
		}
		ranked = append(ranked, f)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		ga, gb := statusGroup(a.OpenStatus, urgency), statusGroup(b.OpenStatus, urgency)
		if ga != gb {
			return ga < gb
		}
		return a.Score > b.Score
	})

	if limit := finalListSize(urgency); len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return ranked
}

// statusGroup buckets facilities for the status-aware sort. Emergencies
// pull confirmed-open facilities ahead of everything else; for general
// care only confirmed-closed facilities sink, and unknown hours compete
// on score alone. Sinking closed below unknown is deliberate: grouping
// first keeps the comparator transitive, where letting closed-vs-unknown
// pairs fall through to score would make the sort order depend on
// comparison order.
func statusGroup(status entities.OpenStatus, urgency entities.Urgency) int {
	if urgency == entities.UrgencyEmergency {
		if status == entities.StatusOpen {
			return 0
		}
		return 1
	}
	if status == entities.StatusClosed {
		return 1
	}
	return 0
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
