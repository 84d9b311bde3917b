// Package kafka publishes triggered risk events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/parametric-risk-engine/internal/config"
	"github.com/couchcryptid/parametric-risk-engine/internal/domain"
)

// Publisher produces risk events to the events topic.
// It implements service.EventPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured events topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaEventsTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishEvents serializes and publishes risk events in a single
// WriteMessages call. Deterministic event IDs key the messages, so
// re-evaluating the same range compacts to the same records downstream.
func (p *Publisher) PublishEvents(ctx context.Context, events []domain.RiskEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(events))
	for i := range events {
		msg, err := serializeToMessage(events[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return err
	}
	p.logger.Debug("published risk events", "count", len(events))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a RiskEvent into a Kafka message.
func serializeToMessage(event domain.RiskEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize risk event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "product_id", Value: []byte(event.ProductID)},
			{Key: "tier", Value: []byte(event.Tier)},
			{Key: "anchored_at", Value: []byte(event.Timestamp.Format(time.RFC3339))},
		},
	}, nil
}
