package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sehat-ai/sehat-backend/internal/domain/entities"
	"github.com/sehat-ai/sehat-backend/internal/domain/providers"
	apperrors "github.com/sehat-ai/sehat-backend/pkg/errors"
)

// navigationIdleTimeout expires sessions whose device stopped sending
// position updates without an explicit stop, so an abandoned watch can
// never leak.
const navigationIdleTimeout = 5 * time.Minute

// NavigationSession is one live navigation subscription: a user being
// routed to a chosen facility while their device streams positions.
type NavigationSession struct {
	ID         string              `json:"id"`
	UserID     string              `json:"user_id,omitempty"`
	PlaceID    string              `json:"place_id"`
	Mode       entities.TravelMode `json:"mode"`
	Route      *entities.Route     `json:"route"`
	StartedAt  time.Time           `json:"started_at"`
	lastUpdate time.Time
}

// NavigationService manages live navigation sessions. Every started
// session is guaranteed to be torn down: explicitly by Stop, or by the
// janitor when updates cease.
type NavigationService struct {
	maps     providers.MapProvider
	mu       sync.Mutex
	sessions map[string]*NavigationSession
	clock    func() time.Time
}

// NewNavigationService creates a new navigation service
func NewNavigationService(maps providers.MapProvider) *NavigationService {
	return &NavigationService{
		maps:     maps,
		sessions: make(map[string]*NavigationSession),
		clock:    time.Now,
	}
}

// Start opens a session and computes the initial route.
func (s *NavigationService) Start(ctx context.Context, userID, placeID string, mode entities.TravelMode, origin entities.Location) (*NavigationSession, error) {
	if placeID == "" {
		return nil, apperrors.NewValidationError("place_id is required")
	}

	route, err := s.maps.Directions(ctx, origin, placeID, mode)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to compute initial route", err)
	}

	now := s.clock()
	session := &NavigationSession{
		ID:         uuid.New().String(),
		UserID:     userID,
		PlaceID:    placeID,
		Mode:       mode,
		Route:      route,
		StartedAt:  now,
		lastUpdate: now,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session, nil
}

// Update recomputes the route from a fresh device position, optionally
// switching travel mode. The previous route is replaced wholesale.
func (s *NavigationService) Update(ctx context.Context, sessionID string, position entities.Location, mode entities.TravelMode) (*NavigationSession, error) {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return nil, apperrors.NewNotFoundError("navigation session not found")
	}

	route, err := s.maps.Directions(ctx, position, session.PlaceID, mode)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to recompute route", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Session may have been stopped while the request was in flight.
	if _, live := s.sessions[sessionID]; !live {
		return nil, apperrors.NewNotFoundError("navigation session not found")
	}
	session.Mode = mode
	session.Route = route
	session.lastUpdate = s.clock()
	return session, nil
}

// Stop tears a session down. Stopping an unknown session is not an
// error; teardown must be idempotent for abnormal client exits.
func (s *NavigationService) Stop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// ActiveSessions returns the number of live sessions.
func (s *NavigationService) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// RunJanitor expires idle sessions until ctx is cancelled.
func (s *NavigationService) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.expireIdle()
		}
	}
}

func (s *NavigationService) expireIdle() {
	cutoff := s.clock().Add(-navigationIdleTimeout)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, session := range s.sessions {
		if session.lastUpdate.Before(cutoff) {
			delete(s.sessions, id)
			log.Info().Str("session_id", id).Msg("expired idle navigation session")
		}
	}
}
