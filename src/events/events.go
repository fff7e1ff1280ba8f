// backend/src/events/events.go
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/username/expensetracker/backend/src/logger"
)

const (
	ActionImported = "imported"
	ActionExported = "exported"
)

// Event announces a completed import or export.
type Event struct {
	Action    string    `json:"action"`
	UserID    int64     `json:"user_id"`
	Format    string    `json:"format"`
	Records   int       `json:"records"`
	Failed    int       `json:"failed"`
	Timestamp time.Time `json:"timestamp"`
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events to interested parties.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, e Event) error {
	logger.FromContext(ctx).Debug("Event dropped, no broker configured", "action", e.Action, "userID", e.UserID)
	return nil
}

func (NopPublisher) Close() error { return nil }

// PublishBestEffort publishes e and only logs a failure; callers never fail because of it.
func PublishBestEffort(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if err := p.Publish(ctx, e); err != nil {
		logger.FromContext(ctx).Warn("Failed to publish event", "action", e.Action, "userID", e.UserID, "error", err)
	}
}
