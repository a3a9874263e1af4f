package outbox

import (
	"context"
	"fmt"

	"github.com/RbroH99/les-sha-accesories/internal/models"
	"github.com/RbroH99/les-sha-accesories/pkg/logger"
)

// EventPublisher publishes a keyed event to a topic
type EventPublisher interface {
	SendMessage(ctx context.Context, topic string, key string, value []byte) error
}

// KafkaHandler publishes outbox events to Kafka so external consumers
// (analytics, fulfillment) can follow the order stream. It subscribes
// to every order event type.
type KafkaHandler struct {
	publisher EventPublisher
	topic     string
	logger    logger.Logger
}

// NewKafkaHandler creates a new KafkaHandler
func NewKafkaHandler(publisher EventPublisher, topic string, logger logger.Logger) *KafkaHandler {
	return &KafkaHandler{
		publisher: publisher,
		topic:     topic,
		logger:    logger,
	}
}

// HandleMessage publishes the raw event payload keyed by the order id,
// keeping per-order ordering within a partition.
func (h *KafkaHandler) HandleMessage(ctx context.Context, msg *models.OutboxMessage) error {
	if err := h.publisher.SendMessage(ctx, h.topic, msg.AggregateID, msg.Payload); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", msg.EventType, err)
	}

	h.logger.Debug("Event published",
		"topic", h.topic,
		"eventType", msg.EventType,
		"aggregateID", msg.AggregateID)

	return nil
}
