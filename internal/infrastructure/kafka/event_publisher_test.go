package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PremHer/kasvarealty-sub001/internal/domain/event"
	"github.com/PremHer/kasvarealty-sub001/internal/infrastructure/kafka"
	"github.com/PremHer/kasvarealty-sub001/pkg/events"
	pkgkafka "github.com/PremHer/kasvarealty-sub001/pkg/kafka"
)

type sent struct {
	topic    string
	messages []pkgkafka.Message
}

type mockWriter struct {
	calls []sent
	err   error
}

func (m *mockWriter) Publish(_ context.Context, topic string, messages ...pkgkafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.calls = append(m.calls, sent{topic: topic, messages: messages})
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEventPublisher_Publish(t *testing.T) {
	w := &mockWriter{}
	pub := kafka.NewEventPublisher(w, discardLogger())

	accountID, tenantID := uuid.New(), uuid.New()
	evt := event.NewSaleAccountSettled(accountID, tenantID, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, pub.Publish(context.Background(), "installment-events", evt))
	require.Len(t, w.calls, 1)
	assert.Equal(t, "installment-events", w.calls[0].topic)

	msg := w.calls[0].messages[0]
	assert.Equal(t, accountID.String(), string(msg.Key))
	assert.Equal(t, event.TypeSaleAccountSettled, msg.Headers["event_type"])
	assert.Equal(t, evt.EventID().String(), msg.Headers["event_id"])
	assert.Equal(t, tenantID.String(), msg.Headers["tenant_id"])

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.NotEmpty(t, body)
}

func TestEventPublisher_PublishNothing(t *testing.T) {
	w := &mockWriter{}
	pub := kafka.NewEventPublisher(w, discardLogger())

	require.NoError(t, pub.Publish(context.Background(), "installment-events"))
	assert.Empty(t, w.calls)
}

func TestEventPublisher_PublishEntriesGroupsByTopic(t *testing.T) {
	w := &mockWriter{}
	pub := kafka.NewEventPublisher(w, discardLogger())
	account := uuid.New()

	entry := func(topic, typ string) events.OutboxEntry {
		return events.OutboxEntry{
			ID: uuid.New(), AggregateID: account, AggregateType: event.AggregateSaleAccount,
			TenantID: uuid.New(), EventType: typ, Topic: topic, Payload: []byte(`{}`),
		}
	}
	entries := []events.OutboxEntry{
		entry("a", event.TypePaymentApplied),
		entry("b", event.TypeInstallmentPaid),
		entry("a", event.TypeSaleAccountSettled),
	}

	require.NoError(t, pub.PublishEntries(context.Background(), entries...))
	require.Len(t, w.calls, 2)
	assert.Equal(t, "a", w.calls[0].topic)
	require.Len(t, w.calls[0].messages, 2)
	assert.Equal(t, event.TypePaymentApplied, w.calls[0].messages[0].Headers["event_type"])
	assert.Equal(t, event.TypeSaleAccountSettled, w.calls[0].messages[1].Headers["event_type"])
	assert.Equal(t, "b", w.calls[1].topic)
	assert.Equal(t, account.String(), string(w.calls[1].messages[0].Key))
}

func TestEventPublisher_WriterFailure(t *testing.T) {
	w := &mockWriter{err: errors.New("broker down")}
	pub := kafka.NewEventPublisher(w, discardLogger())

	err := pub.PublishEntries(context.Background(), events.OutboxEntry{ID: uuid.New(), Topic: "a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}
