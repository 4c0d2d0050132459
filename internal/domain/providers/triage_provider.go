package providers

import (
	"context"

	"github.com/sehat-ai/sehat-backend/internal/domain/entities"
)

// TriageProvider wraps a single round trip to an external classifier.
// Implementations surface transport and parse failures verbatim; they
// never retry and never validate beyond defaulting missing fields.
type TriageProvider interface {
	Classify(ctx context.Context, symptoms string) (*entities.TriageResult, error)
}
