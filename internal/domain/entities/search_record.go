package entities

import "time"

// SearchRecord is one saved symptom search in a user's history. The
// location is optional; only located records feed the heatmap.
type SearchRecord struct {
	ID        string       `json:"id" db:"id"`
	UserID    string       `json:"user_id" db:"user_id"`
	Symptoms  string       `json:"symptoms" db:"symptoms"`
	Result    TriageResult `json:"result" db:"-"`
	Location  *Location    `json:"location,omitempty" db:"-"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}

// SearchEvent is the analytics event published for each classification.
type SearchEvent struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id,omitempty"`
	Symptoms    string    `json:"symptoms"`
	Urgency     Urgency   `json:"urgency"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	LatencyMs   int       `json:"latency_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// HeatmapCell is one aggregated bucket of located searches. Cells are
// 0.01 degree squares keyed by their rounded south-west corner.
type HeatmapCell struct {
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
	Count     int             `json:"count"`
	ByUrgency map[Urgency]int `json:"by_urgency"`
}
