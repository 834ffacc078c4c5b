package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// SubjectDispatchCompleted is the NATS subject for completed batches.
const SubjectDispatchCompleted = "coldsend.dispatch.completed"

// NATSPublisher publishes events to a NATS broker as JSON messages.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to the broker at url.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("coldsend"))
	if err != nil {
		return nil, fmt.Errorf("nats connect failed: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

// PublishDispatchCompleted implements Publisher.
func (p *NATSPublisher) PublishDispatchCompleted(ctx context.Context, event DispatchCompleted) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch event: %w", err)
	}
	if err := p.conn.Publish(SubjectDispatchCompleted, data); err != nil {
		return fmt.Errorf("failed to publish dispatch event: %w", err)
	}
	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() {
	p.conn.Drain()
}
