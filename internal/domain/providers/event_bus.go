package providers

import (
	"context"

	"github.com/sehat-ai/sehat-backend/internal/domain/entities"
)

// EventBus publishes search events to interested subscribers (live
// dashboards, heatmap refreshers).
type EventBus interface {
	// Publish publishes an event to all subscribers of a channel
	Publish(ctx context.Context, channel string, event *entities.SearchEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.SearchEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelSearches is the channel carrying all search events.
const EventChannelSearches = "searches:events"
