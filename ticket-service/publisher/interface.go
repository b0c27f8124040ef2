package publisher

import (
	"context"

	"github.com/arunvm123/ticketavailability/ticket-service/model"
)

// LookupPublisher ships the audit record of an availability request
type LookupPublisher interface {
	PublishLookup(ctx context.Context, event model.LookupEvent) error
	Close() error
}

// NoopPublisher is used when Kafka is disabled
type NoopPublisher struct{}

func (NoopPublisher) PublishLookup(ctx context.Context, event model.LookupEvent) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}
