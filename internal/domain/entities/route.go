package entities

import "time"

// TravelMode selects how directions are computed.
type TravelMode string

const (
	ModeDriving   TravelMode = "driving"
	ModeBicycling TravelMode = "bicycling"
	ModeWalking   TravelMode = "walking"
)

// ParseTravelMode coerces an arbitrary string to a valid TravelMode.
func ParseTravelMode(s string) TravelMode {
	switch TravelMode(s) {
	case ModeBicycling:
		return ModeBicycling
	case ModeWalking:
		return ModeWalking
	default:
		return ModeDriving
	}
}

// RouteStep is one turn-by-turn instruction.
type RouteStep struct {
	Instruction  string `json:"instruction"`
	DistanceText string `json:"distance"`
}

// Route is a computed route from the user to a facility. A route is
// replaced wholesale on mode or facility change, never mutated.
type Route struct {
	PlaceID         string      `json:"place_id"`
	Mode            TravelMode  `json:"mode"`
	DistanceMeters  int         `json:"distance_meters"`
	DurationSeconds int         `json:"duration_seconds"`
	DistanceText    string      `json:"distance_text"`
	DurationText    string      `json:"duration_text"`
	Steps           []RouteStep `json:"steps"`
}

// FastestRoute is the facility, among a ranked shortlist, whose route
// has the minimum travel duration under the selected mode.
type FastestRoute struct {
	Facility   *Facility `json:"facility"`
	Route      *Route    `json:"route"`
	SelectedAt time.Time `json:"selected_at"`
}
