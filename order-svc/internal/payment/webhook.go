package payment

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/derrickshema/recipe-manager/order-svc/internal/domain"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

type EventKind string

const (
	EventSucceeded EventKind = "succeeded"
	EventFailed    EventKind = "failed"
	EventIgnored   EventKind = "ignored"
)

// Event is a verified gateway callback reduced to what reconciliation needs.
type Event struct {
	ID        string
	Type      string
	Kind      EventKind
	OrderID   int
	Reference string
}

type WebhookVerifier struct {
	secret string
}

func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: secret}
}

// Verify checks the signature before looking at the body. Any failure is domain.ErrInvalidRequest.
func (v *WebhookVerifier) Verify(payload []byte, signature string) (*Event, error) {
	if signature == "" {
		return nil, fmt.Errorf("%w: missing stripe-signature header", domain.ErrInvalidRequest)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, v.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: stripe signature invalid: %v", domain.ErrInvalidRequest, err)
	}

	normalized := &Event{ID: event.ID, Type: string(event.Type), Kind: EventIgnored}
	if event.Data == nil {
		return normalized, nil
	}

	switch normalized.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("%w: malformed checkout session: %v", domain.ErrInvalidRequest, err)
		}
		orderID, err := strconv.Atoi(session.Metadata["order_id"])
		if err != nil || orderID <= 0 {
			return nil, fmt.Errorf("%w: checkout session %s has no order_id", domain.ErrInvalidRequest, session.ID)
		}
		normalized.Kind = EventSucceeded
		normalized.OrderID = orderID
		normalized.Reference = session.ID

	case "payment_intent.payment_failed":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return nil, fmt.Errorf("%w: malformed payment intent: %v", domain.ErrInvalidRequest, err)
		}
		normalized.Kind = EventFailed
		normalized.Reference = intent.ID
		if orderID, err := strconv.Atoi(intent.Metadata["order_id"]); err == nil {
			normalized.OrderID = orderID
		}
	}

	return normalized, nil
}
