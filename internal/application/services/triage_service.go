package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sehat-ai/sehat-backend/internal/domain/entities"
	"github.com/sehat-ai/sehat-backend/internal/domain/providers"
	"github.com/sehat-ai/sehat-backend/internal/domain/repositories"
	apperrors "github.com/sehat-ai/sehat-backend/pkg/errors"
)

const defaultHistoryLimit = 10

// TriageService classifies symptom descriptions and records history.
type TriageService struct {
	classifier providers.TriageProvider
	history    repositories.SearchHistoryRepository
	events     providers.EventBus
	clock      func() time.Time
}

// NewTriageService creates a new triage service. History and events are
// optional; passing nil disables persistence or publishing.
func NewTriageService(classifier providers.TriageProvider, history repositories.SearchHistoryRepository, events providers.EventBus) *TriageService {
	return &TriageService{
		classifier: classifier,
		history:    history,
		events:     events,
		clock:      time.Now,
	}
}

// Classify sends the symptom text to the classifier, coerces the
// urgency to the closed set, and records the search. Classifier errors
// surface verbatim; persistence failures are logged, never fatal.
func (s *TriageService) Classify(ctx context.Context, userID, symptoms string, loc *entities.Location) (*entities.TriageResult, error) {
	if strings.TrimSpace(symptoms) == "" {
		return nil, apperrors.NewValidationError("symptoms description is required")
	}

	start := s.clock()
	result, err := s.classifier.Classify(ctx, symptoms)
	if err != nil {
		return nil, err
	}

	// Coerce at the boundary so no downstream switch ever sees an
	// unrecognized urgency string.
	result.Urgency = entities.ParseUrgency(string(result.Urgency))

	latency := time.Since(start)

	if s.history != nil && userID != "" {
		record := &entities.SearchRecord{
			ID:        uuid.New().String(),
			UserID:    userID,
			Symptoms:  symptoms,
			Result:    *result,
			Location:  loc,
			CreatedAt: s.clock(),
		}
		if err := s.history.Save(ctx, record); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("failed to save search history")
		}
	}

	if s.events != nil {
		event := &entities.SearchEvent{
			ID:        uuid.New().String(),
			UserID:    userID,
			Symptoms:  symptoms,
			Urgency:   result.Urgency,
			LatencyMs: int(latency.Milliseconds()),
			CreatedAt: s.clock(),
		}
		if loc != nil {
			event.Latitude = &loc.Latitude
			event.Longitude = &loc.Longitude
		}
		if err := s.events.Publish(ctx, providers.EventChannelSearches, event); err != nil {
			log.Warn().Err(err).Msg("failed to publish search event")
		}
	}

	return result, nil
}

// History returns the user's most recent searches, newest first.
func (s *TriageService) History(ctx context.Context, userID string, limit int) ([]*entities.SearchRecord, error) {
	if userID == "" {
		return nil, apperrors.NewUnauthorizedError("user identifier is required")
	}
	if s.history == nil {
		return nil, apperrors.NewNotFoundError("search history is not available")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.history.ListByUser(ctx, userID, limit)
}
