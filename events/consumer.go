package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"checkout-svc/store"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

// Confirmer is the slice of the checkout service the consumer needs.
type Confirmer interface {
	ConfirmBankTransfer(ctx context.Context, txRef string) error
}

type confirmationEvent struct {
	EventType string `json:"event_type"`
	TxRef     string `json:"tx_ref"`
}

// ConfirmationConsumer listens for out-of-band settlement events from the
// backend. A confirmed bank transfer moves its session out of
// awaiting_payment; everything else on the topic is skipped.
type ConfirmationConsumer struct {
	reader    *kafka.Reader
	confirmer Confirmer
	logger    *zap.Logger
}

func NewConfirmationConsumer(brokers []string, groupID, topic string, confirmer Confirmer, logger *zap.Logger) *ConfirmationConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topic:             topic,
		MinBytes:          10e3,
		MaxBytes:          10e6,
		HeartbeatInterval: 3 * time.Second,
		CommitInterval:    time.Second,
		MaxAttempts:       3,
		Logger:            kafka.LoggerFunc(func(msg string, args ...interface{}) { logger.Debug(fmt.Sprintf(msg, args...)) }),
		ErrorLogger:       kafka.LoggerFunc(func(msg string, args ...interface{}) { logger.Error(fmt.Sprintf(msg, args...)) }),
	})

	return &ConfirmationConsumer{
		reader:    reader,
		confirmer: confirmer,
		logger:    logger,
	}
}

func (c *ConfirmationConsumer) Start(ctx context.Context) error {
	c.logger.Info("Confirmation consumer started", zap.String("topic", c.reader.Config().Topic))

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return c.reader.Close()
			}
			c.logger.Error("Failed to fetch message from Kafka", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		if err := c.handleMessage(ctx, msg); err != nil {
			c.logger.Error("Failed to handle confirmation message",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			// Fall through to commit: confirmations are idempotent and the
			// session either expired or was already settled.
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("Failed to commit offset", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

func (c *ConfirmationConsumer) handleMessage(ctx context.Context, msg kafka.Message) error {
	// Extract trace context from Kafka message headers
	propagator := otel.GetTextMapPropagator()
	ctx = propagator.Extract(ctx, kafkaHeaderCarrier(msg.Headers))

	ctx, span := otel.Tracer("checkout-svc").Start(ctx, "ProcessConfirmation")
	defer span.End()

	var event confirmationEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	if event.EventType != "bank_transfer_confirmed" {
		return nil
	}
	if event.TxRef == "" {
		return fmt.Errorf("confirmation event missing tx_ref")
	}

	span.SetAttributes(
		attribute.String("event.type", event.EventType),
		attribute.String("tx_ref", event.TxRef),
	)

	if err := c.confirmer.ConfirmBankTransfer(ctx, event.TxRef); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.logger.Warn("Confirmation for unknown or expired session", zap.String("tx_ref", event.TxRef))
			return nil
		}
		span.RecordError(err)
		return err
	}
	return nil
}

func (c *ConfirmationConsumer) Close() error {
	return c.reader.Close()
}

// kafkaHeaderCarrier implements the TextMapCarrier interface for kafka-go headers
type kafkaHeaderCarrier []kafka.Header

func (c kafkaHeaderCarrier) Get(key string) string {
	for _, h := range c {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c kafkaHeaderCarrier) Set(key, value string) {
	// Not needed for extraction
}

func (c kafkaHeaderCarrier) Keys() []string {
	keys := make([]string, len(c))
	for i, h := range c {
		keys[i] = h.Key
	}
	return keys
}

var _ propagation.TextMapCarrier = kafkaHeaderCarrier(nil)
