// Package events publishes dispatch outcomes for downstream consumers
// (auditing, CRM sync). Publishing is best-effort: a failed publish never
// fails the request that produced it.
package events

import (
	"context"
	"time"

	"github.com/coldsend/coldsend/internal/domain"
)

// DispatchCompleted summarizes one finished send batch.
type DispatchCompleted struct {
	Sender      string                   `json:"sender"`
	Company     string                   `json:"company"`
	Role        string                   `json:"role"`
	Recipients  int                      `json:"recipients"`
	Succeeded   int                      `json:"succeeded"`
	Failed      int                      `json:"failed"`
	Results     []domain.RecipientResult `json:"results"`
	CompletedAt time.Time                `json:"completed_at"`
}

// Publisher emits dispatch lifecycle events.
type Publisher interface {
	PublishDispatchCompleted(ctx context.Context, event DispatchCompleted) error
}

// NopPublisher discards all events. Used when no broker is configured.
type NopPublisher struct{}

// PublishDispatchCompleted implements Publisher.
func (NopPublisher) PublishDispatchCompleted(ctx context.Context, event DispatchCompleted) error {
	return nil
}
