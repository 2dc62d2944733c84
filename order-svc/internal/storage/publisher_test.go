package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/derrickshema/recipe-manager/order-svc/internal/domain"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func TestKafkaPublisher_KeysBySubscriber(t *testing.T) {
	writer := &recordingWriter{}
	publisher := NewKafkaPublisher(writer)

	err := publisher.Notify(context.Background(), "restaurant:1", domain.EventNewOrder,
		&domain.Order{ID: 12, CustomerID: 7, RestaurantID: 1, Status: domain.StatusPending})

	require.NoError(t, err)
	require.Len(t, writer.messages, 1)
	assert.Equal(t, "restaurant:1", string(writer.messages[0].Key))

	var event domain.OrderEvent
	require.NoError(t, json.Unmarshal(writer.messages[0].Value, &event))
	assert.Equal(t, domain.EventNewOrder, event.Type)
	assert.Equal(t, "restaurant:1", event.Subscriber)
	assert.Equal(t, 12, event.Data.ID)
	assert.False(t, event.SentAt.IsZero())
}

func TestKafkaPublisher_WriteFailure(t *testing.T) {
	publisher := NewKafkaPublisher(&recordingWriter{err: errors.New("leader not available")})

	err := publisher.Notify(context.Background(), "customer:7", domain.EventOrderUpdate, &domain.Order{ID: 12})

	assert.EqualError(t, err, "leader not available")
}

type recordingChannel struct {
	exchanges  []string
	published  []amqp.Publishing
	routingKey string
	declareErr error
}

func (c *recordingChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	if c.declareErr != nil {
		return c.declareErr
	}
	c.exchanges = append(c.exchanges, name+"/"+kind)
	return nil
}

func (c *recordingChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	c.routingKey = exchange + "/" + key
	c.published = append(c.published, msg)
	return nil
}

func TestMailPublisher_SendInvitation(t *testing.T) {
	channel := &recordingChannel{}
	publisher, err := NewMailPublisher(channel, "http://localhost:5173")
	require.NoError(t, err)
	assert.Equal(t, []string{"mail/topic"}, channel.exchanges)

	expires := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)
	err = publisher.SendInvitation(context.Background(), &domain.Invitation{
		Token:        "inv-1",
		Email:        "bob@example.com",
		RestaurantID: 1,
		Role:         domain.OrgRoleEmployee,
		ExpiresAt:    expires,
	}, "Pizza Place")
	require.NoError(t, err)

	require.Len(t, channel.published, 1)
	assert.Equal(t, "mail/mail.staff_invitation", channel.routingKey)
	assert.Equal(t, amqp.Persistent, channel.published[0].DeliveryMode)

	var mail InvitationMail
	require.NoError(t, json.Unmarshal(channel.published[0].Body, &mail))
	assert.Equal(t, "http://localhost:5173/accept-invitation?token=inv-1", mail.AcceptURL)
	assert.Equal(t, "Pizza Place", mail.RestaurantName)
	assert.Equal(t, "2026-03-08T12:00:00Z", mail.ExpiresAt)
}

func TestMailPublisher_DeclareFailure(t *testing.T) {
	_, err := NewMailPublisher(&recordingChannel{declareErr: errors.New("channel closed")}, "")

	assert.ErrorContains(t, err, "declare exchange mail")
}
