package repositories

import (
	"context"
	"time"

	"github.com/sehat-ai/sehat-backend/internal/domain/entities"
)

// SearchHistoryRepository persists per-user symptom searches. The store
// is optional; the triage flow works without it.
type SearchHistoryRepository interface {
	// Save stores one search record
	Save(ctx context.Context, record *entities.SearchRecord) error

	// ListByUser returns the user's most recent searches, newest first
	ListByUser(ctx context.Context, userID string, limit int) ([]*entities.SearchRecord, error)

	// ListLocatedSince returns every record with a location created at
	// or after the cutoff; feeds heatmap aggregation
	ListLocatedSince(ctx context.Context, since time.Time) ([]*entities.SearchRecord, error)
}
