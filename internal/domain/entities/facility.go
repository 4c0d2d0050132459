package entities

// Location represents geographical coordinates
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// OpenStatus is the tri-state open/closed status of a facility. The
// zero value means hours data was unavailable; an emergency search must
// never drop a facility merely for lacking data.
type OpenStatus int

const (
	StatusUnknown OpenStatus = iota
	StatusOpen
	StatusClosed
)

func (s OpenStatus) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so the status renders
// as a readable string in JSON responses.
func (s OpenStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Facility is a candidate medical facility returned by a places search,
// enriched with derived distance and composite score.
type Facility struct {
	PlaceID     string     `json:"place_id"`
	Name        string     `json:"name"`
	Address     string     `json:"address,omitempty"`
	Location    Location   `json:"location"`
	Rating      *float64   `json:"rating,omitempty"`
	RatingCount int        `json:"rating_count,omitempty"`
	OpenStatus  OpenStatus `json:"open_status"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	Website     string     `json:"website,omitempty"`
	MapsURL     string     `json:"maps_url,omitempty"`
	DistanceKm  float64    `json:"distance_km"`
	Score       float64    `json:"score"`
}
