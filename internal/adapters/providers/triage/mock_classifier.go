package triage

import (
	"context"
	"strings"

	"github.com/sehat-ai/sehat-backend/internal/domain/entities"
)

// MockClassifier is a keyword-heuristic TriageProvider used when no
// Gemini API key is configured. It is deliberately conservative: any
// red-flag keyword escalates straight to emergency.
type MockClassifier struct{}

// NewMockClassifier creates a new mock classifier.
func NewMockClassifier() *MockClassifier {
	return &MockClassifier{}
}

var emergencyKeywords = []string{
	"chest pain", "can't breathe", "cannot breathe", "difficulty breathing",
	"unconscious", "severe bleeding", "stroke", "seizure", "overdose",
}

var urgentKeywords = []string{
	"high fever", "broken", "fracture", "deep cut", "severe pain",
	"vomiting blood", "dehydrated",
}

var specialistRules = []struct {
	keyword    string
	specialist string
	department string
}{
	{"chest pain", "Cardiologist", "Cardiology"},
	{"heart", "Cardiologist", "Cardiology"},
	{"rash", "Dermatologist", "Dermatology"},
	{"skin", "Dermatologist", "Dermatology"},
	{"eye", "Ophthalmologist", "Ophthalmology"},
	{"tooth", "Dentist", "Dental"},
	{"bone", "Orthopedist", "Orthopedics"},
	{"fracture", "Orthopedist", "Orthopedics"},
	{"pregnan", "Obstetrician", "Obstetrics"},
	{"child", "Pediatrician", "Pediatrics"},
}

// Classify maps symptom text to a fixed triage result via keyword
// matching.
func (m *MockClassifier) Classify(ctx context.Context, symptoms string) (*entities.TriageResult, error) {
	lower := strings.ToLower(symptoms)

	result := &entities.TriageResult{
		Specialist:     "General Practitioner",
		Department:     "General Medicine",
		Urgency:        entities.UrgencyNormal,
		FacilityType:   "hospital",
		SearchKeywords: []string{"general", "hospital"},
	}

	for _, rule := range specialistRules {
		if strings.Contains(lower, rule.keyword) {
			result.Specialist = rule.specialist
			result.Department = rule.department
			result.SearchKeywords = []string{strings.ToLower(rule.department)}
			break
		}
	}

	for _, kw := range urgentKeywords {
		if strings.Contains(lower, kw) {
			result.Urgency = entities.UrgencyUrgent
			break
		}
	}
	for _, kw := range emergencyKeywords {
		if strings.Contains(lower, kw) {
			result.Urgency = entities.UrgencyEmergency
			result.EmergencyRequired = true
			break
		}
	}

	return result, nil
}
