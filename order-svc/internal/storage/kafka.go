package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/derrickshema/recipe-manager/order-svc/internal/domain"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher pushes order events to the order-events topic keyed by subscriber.
type KafkaPublisher struct {
	Writer MessageWriter
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{Writer: writer}
}

func (p *KafkaPublisher) Notify(ctx context.Context, subscriber, eventType string, order *domain.Order) error {
	payload, err := json.Marshal(domain.OrderEvent{
		Type:       eventType,
		Subscriber: subscriber,
		Data:       order,
		SentAt:     time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(subscriber),
		Value: payload,
	})
}
