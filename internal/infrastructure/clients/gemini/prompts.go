package gemini

import (
	"encoding/json"
	"fmt"

	"github.com/sehat-ai/sehat-backend/internal/domain/entities"
)

const triageSystemPrompt = `You are a medical triage assistant. Given a patient's symptom description, return ONLY valid JSON with this schema:
{
  "specialist": string (the type of doctor to see, e.g. "Cardiologist"),
  "department": string (the hospital department, e.g. "Cardiology"),
  "urgency": string (exactly one of: "normal", "urgent", "emergency"),
  "facility_type": string (the kind of facility to search for, e.g. "hospital", "clinic", "eye hospital"),
  "search_keywords": string[] (2-4 terms for finding a suitable facility on a map),
  "emergency_required": boolean (true only for life-threatening presentations)
}
Classify conservatively: when symptoms could indicate a life-threatening condition (chest pain, difficulty breathing, severe bleeding, loss of consciousness), use "emergency". Do not diagnose. Do not include any text outside the JSON object.`

// triagePayload mirrors the classifier's JSON output. Every field is
// optional; absent fields fall back to safe defaults.
type triagePayload struct {
	Specialist        string   `json:"specialist"`
	Department        string   `json:"department"`
	Urgency           string   `json:"urgency"`
	FacilityType      string   `json:"facility_type"`
	SearchKeywords    []string `json:"search_keywords"`
	EmergencyRequired bool     `json:"emergency_required"`
}

func buildTriageUserPrompt(symptoms string) string {
	return fmt.Sprintf("Patient's symptom description: %s", symptoms)
}

func parseTriagePayload(data []byte) (*entities.TriageResult, error) {
	var payload triagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse triage payload: %w", err)
	}

	result := &entities.TriageResult{
		Specialist:        payload.Specialist,
		Department:        payload.Department,
		Urgency:           entities.ParseUrgency(payload.Urgency),
		FacilityType:      payload.FacilityType,
		SearchKeywords:    payload.SearchKeywords,
		EmergencyRequired: payload.EmergencyRequired,
	}
	if result.Specialist == "" {
		result.Specialist = "General Practitioner"
	}
	if result.Department == "" {
		result.Department = "General Medicine"
	}
	if result.FacilityType == "" {
		result.FacilityType = "hospital"
	}
	if result.SearchKeywords == nil {
		result.SearchKeywords = []string{}
	}
	return result, nil
}
