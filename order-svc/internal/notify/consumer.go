package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/derrickshema/recipe-manager/order-svc/internal/domain"

	"github.com/segmentio/kafka-go"
)

const readRetryDelay = time.Second

// MessageReader is the part of *kafka.Reader the consumer uses.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// Message is what a websocket subscriber receives.
type Message struct {
	Type string        `json:"type"`
	Data *domain.Order `json:"data"`
}

// Consumer fans order events from Kafka out to the local registry.
type Consumer struct {
	Reader   MessageReader
	Registry *Registry
}

func NewConsumer(reader MessageReader, registry *Registry) *Consumer {
	return &Consumer{
		Reader:   reader,
		Registry: registry,
	}
}

func (c *Consumer) Start(ctx context.Context) {
	slog.Info("[order-svc] starting order events consumer")
	for {
		message, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				slog.Info("[order-svc] order events consumer stopped")
				return
			}
			slog.Error("[order-svc] error reading order event", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(readRetryDelay):
			}
			continue
		}

		c.Process(message.Value)
	}
}

// Process decodes one event envelope and broadcasts it. It returns the number
// of connections that received it.
func (c *Consumer) Process(value []byte) int {
	var event domain.OrderEvent
	if err := json.Unmarshal(value, &event); err != nil {
		slog.Warn("[order-svc] error unmarshaling order event", "error", err)
		return 0
	}

	switch event.Type {
	case domain.EventNewOrder, domain.EventOrderUpdate:
	default:
		slog.Debug("[order-svc] skipping order event", "type", event.Type)
		return 0
	}
	if event.Subscriber == "" || event.Data == nil {
		slog.Warn("[order-svc] incomplete order event", "type", event.Type)
		return 0
	}

	payload, err := json.Marshal(Message{Type: event.Type, Data: event.Data})
	if err != nil {
		slog.Error("[order-svc] error encoding order event", "error", err)
		return 0
	}
	return c.Registry.Broadcast(event.Subscriber, payload)
}
