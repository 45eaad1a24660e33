package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-marketplace/internal/logger"
	"github.com/sbilibin2017/gw-marketplace/internal/models"
	"github.com/segmentio/kafka-go"
)

// KafkaWriter defines the interface for writing messages to Kafka.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
}

// eventPublisher emits change events. Publishing never fails the caller.
type eventPublisher struct {
	kafkaWriter KafkaWriter
}

func (p eventPublisher) publish(ctx context.Context, operation string, entityID, userID uuid.UUID) {
	event := models.Event{
		EventID:   uuid.NewString(),
		Timestamp: time.Now().Unix(),
		Operation: operation,
		EntityID:  entityID.String(),
		UserID:    userID.String(),
	}

	if p.kafkaWriter == nil {
		logger.Log.Warnw("Kafka writer not configured, skipping publishing", "event_id", event.EventID, "operation", operation)
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("Failed to marshal event for Kafka", "event_id", event.EventID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.EntityID),
		Value: data,
	}

	if err := p.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("Failed to publish event to Kafka", "event_id", event.EventID, "operation", operation, "error", err)
	} else {
		logger.Log.Infow("Event published to Kafka", "event_id", event.EventID, "operation", operation, "entity_id", event.EntityID)
	}
}
