package entities

// Urgency is the triage urgency level. It is a closed set: anything a
// classifier returns outside the known values is coerced to normal at
// the boundary so downstream switches never see an unrecognized string.
type Urgency string

const (
	UrgencyNormal    Urgency = "normal"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyEmergency Urgency = "emergency"
)

// ParseUrgency coerces an arbitrary string to a valid Urgency.
func ParseUrgency(s string) Urgency {
	switch Urgency(s) {
	case UrgencyUrgent:
		return UrgencyUrgent
	case UrgencyEmergency:
		return UrgencyEmergency
	default:
		return UrgencyNormal
	}
}

// SearchRadiusKm returns the facility search radius for the urgency.
func (u Urgency) SearchRadiusKm() float64 {
	switch u {
	case UrgencyEmergency:
		return 20
	case UrgencyUrgent:
		return 15
	default:
		return 10
	}
}

// TriageResult is the classifier output for one symptom description.
// It is immutable once produced; a new query creates a new result.
type TriageResult struct {
	Specialist        string   `json:"specialist"`
	Department        string   `json:"department"`
	Urgency           Urgency  `json:"urgency"`
	FacilityType      string   `json:"facility_type"`
	SearchKeywords    []string `json:"search_keywords"`
	EmergencyRequired bool     `json:"emergency_required"`
}
