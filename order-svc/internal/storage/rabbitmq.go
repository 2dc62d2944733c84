package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/derrickshema/recipe-manager/order-svc/internal/domain"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	MailExchange         = "mail"
	InvitationRoutingKey = "mail.staff_invitation"
)

// AMQPChannel is the part of *amqp.Channel the mail publisher uses.
type AMQPChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type InvitationMail struct {
	To             string `json:"to"`
	Token          string `json:"token"`
	RestaurantID   int    `json:"restaurant_id"`
	RestaurantName string `json:"restaurant_name"`
	Role           string `json:"role"`
	AcceptURL      string `json:"accept_url"`
	ExpiresAt      string `json:"expires_at"`
}

// MailPublisher enqueues outbound mail; a separate worker owns delivery.
type MailPublisher struct {
	Channel     AMQPChannel
	FrontendURL string
}

func NewMailPublisher(ch AMQPChannel, frontendURL string) (*MailPublisher, error) {
	if err := ch.ExchangeDeclare(MailExchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", MailExchange, err)
	}
	return &MailPublisher{Channel: ch, FrontendURL: frontendURL}, nil
}

func (p *MailPublisher) SendInvitation(ctx context.Context, inv *domain.Invitation, restaurantName string) error {
	body, err := json.Marshal(InvitationMail{
		To:             inv.Email,
		Token:          inv.Token,
		RestaurantID:   inv.RestaurantID,
		RestaurantName: restaurantName,
		Role:           string(inv.Role),
		AcceptURL:      p.FrontendURL + "/accept-invitation?token=" + inv.Token,
		ExpiresAt:      inv.ExpiresAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("could not marshal invitation mail: %w", err)
	}

	return p.Channel.PublishWithContext(ctx,
		MailExchange,
		InvitationRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
