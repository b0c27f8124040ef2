package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/arunvm123/ticketavailability/ticket-service/config"
	"github.com/arunvm123/ticketavailability/ticket-service/model"
	"github.com/arunvm123/ticketavailability/ticket-service/pkg/logger"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaLookupPublisher struct {
	writer messageWriter
	l      logger.Logger
}

// NewKafkaLookupPublisher writes asynchronously; delivery failures are only logged.
func NewKafkaLookupPublisher(cfg *config.Kafka, l logger.Logger) *KafkaLookupPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.LookupTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				l.Errorf(context.Background(), "failed to deliver %d lookup events: %v", len(messages), err)
			}
		},
	}

	return newKafkaLookupPublisher(writer, l)
}

func newKafkaLookupPublisher(writer messageWriter, l logger.Logger) *KafkaLookupPublisher {
	return &KafkaLookupPublisher{
		writer: writer,
		l:      l,
	}
}

// PublishLookup keys the message by event id so lookups of one event stay ordered.
func (p *KafkaLookupPublisher) PublishLookup(ctx context.Context, event model.LookupEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal lookup event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("%d", event.EventID)),
		Value: value,
		Time:  event.RequestedAt,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish lookup %s: %w", event.LookupID, err)
	}

	p.l.Debugf(ctx, "published lookup %s for event %d", event.LookupID, event.EventID)
	return nil
}

func (p *KafkaLookupPublisher) Close() error {
	return p.writer.Close()
}
