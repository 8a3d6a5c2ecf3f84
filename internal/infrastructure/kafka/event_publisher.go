package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/PremHer/kasvarealty-sub001/pkg/events"
	pkgkafka "github.com/PremHer/kasvarealty-sub001/pkg/kafka"
)

// MessageWriter is the subset of pkg/kafka.Producer the publisher needs.
type MessageWriter interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// EventPublisher writes domain events and relayed outbox entries to Kafka,
// keyed by sale account so per-account order survives partitioning.
type EventPublisher struct {
	writer MessageWriter
	logger *slog.Logger
}

// NewEventPublisher creates a publisher on top of writer.
func NewEventPublisher(writer MessageWriter, logger *slog.Logger) *EventPublisher {
	return &EventPublisher{writer: writer, logger: logger}
}

// Publish serialises and sends domain events to topic.
func (p *EventPublisher) Publish(ctx context.Context, topic string, evts ...events.DomainEvent) error {
	messages := make([]pkgkafka.Message, 0, len(evts))
	for _, evt := range evts {
		payload, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", evt.EventType(), err)
		}

		p.logger.DebugContext(ctx, "publishing domain event",
			"event_type", evt.EventType(),
			"aggregate_id", evt.AggregateID(),
			"tenant_id", evt.TenantID(),
			"topic", topic,
			"payload_size", len(payload),
		)

		messages = append(messages, message(evt.AggregateID().String(), payload, map[string]string{
			"event_type": evt.EventType(),
			"event_id":   evt.EventID().String(),
			"tenant_id":  evt.TenantID().String(),
		}))
	}
	return p.send(ctx, topic, messages)
}

// PublishEntries forwards outbox entries, grouped by topic in their
// original order.
func (p *EventPublisher) PublishEntries(ctx context.Context, entries ...events.OutboxEntry) error {
	var topics []string
	byTopic := make(map[string][]pkgkafka.Message)
	for _, e := range entries {
		if _, ok := byTopic[e.Topic]; !ok {
			topics = append(topics, e.Topic)
		}
		byTopic[e.Topic] = append(byTopic[e.Topic], message(e.AggregateID.String(), e.Payload, map[string]string{
			"event_type":     e.EventType,
			"event_id":       e.ID.String(),
			"tenant_id":      e.TenantID.String(),
			"aggregate_type": e.AggregateType,
		}))
	}

	for _, topic := range topics {
		if err := p.send(ctx, topic, byTopic[topic]); err != nil {
			return err
		}
	}
	return nil
}

func (p *EventPublisher) send(ctx context.Context, topic string, messages []pkgkafka.Message) error {
	if len(messages) == 0 {
		return nil
	}
	if err := p.writer.Publish(ctx, topic, messages...); err != nil {
		return fmt.Errorf("failed to publish events to topic %s: %w", topic, err)
	}
	return nil
}

func message(key string, payload []byte, headers map[string]string) pkgkafka.Message {
	return pkgkafka.Message{Key: []byte(key), Value: payload, Headers: headers}
}
