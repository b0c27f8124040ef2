package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/arunvm123/ticketavailability/ticket-service/model"
	"github.com/arunvm123/ticketavailability/ticket-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishLookup(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaLookupPublisher(w, logger.InitializeTestZapLogger())

	requestedAt := time.Date(2024, 5, 1, 19, 30, 0, 0, time.UTC)
	event := model.LookupEvent{
		LookupID:    "4b5c6d",
		EventID:     20000,
		Succeeded:   true,
		StatusCode:  200,
		TicketCount: 2,
		SectionIDs:  []string{"1"},
		DurationMs:  35,
		RequestedAt: requestedAt,
	}

	require.NoError(t, p.PublishLookup(context.Background(), event))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "20000", string(msg.Key))
	assert.Equal(t, requestedAt, msg.Time)

	var got model.LookupEvent
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, event, got)
}

func TestPublishLookupWriteFailure(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := newKafkaLookupPublisher(w, logger.InitializeTestZapLogger())

	err := p.PublishLookup(context.Background(), model.LookupEvent{LookupID: "x", EventID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestClose(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaLookupPublisher(w, logger.InitializeTestZapLogger())

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}
