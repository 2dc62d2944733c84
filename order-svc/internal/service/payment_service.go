package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/derrickshema/recipe-manager/order-svc/internal/access"
	"github.com/derrickshema/recipe-manager/order-svc/internal/domain"
	"github.com/derrickshema/recipe-manager/order-svc/internal/payment"

	"golang.org/x/sync/singleflight"
)

type PaymentServiceInterface interface {
	CreateCheckout(ctx context.Context, principal *access.Principal, orderID int) (*payment.CheckoutSession, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type PaymentService struct {
	orders      OrderRepository
	tx          TxManager
	gateway     PaymentGateway
	verifier    WebhookVerifier
	marker      EventMarker
	events      *Dispatcher
	frontendURL string
	group       singleflight.Group
}

var _ PaymentServiceInterface = (*PaymentService)(nil)

func NewPaymentService(
	orders OrderRepository,
	tx TxManager,
	gateway PaymentGateway,
	verifier WebhookVerifier,
	marker EventMarker,
	events *Dispatcher,
	frontendURL string,
) *PaymentService {
	return &PaymentService{
		orders:      orders,
		tx:          tx,
		gateway:     gateway,
		verifier:    verifier,
		marker:      marker,
		events:      events,
		frontendURL: frontendURL,
	}
}

// CreateCheckout opens a hosted checkout for a pending order. Concurrent calls
// for the same order and customer share one gateway request.
func (s *PaymentService) CreateCheckout(ctx context.Context, principal *access.Principal, orderID int) (*payment.CheckoutSession, error) {
	if err := requireActive(principal); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%d:%d", orderID, principal.UserID)
	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.createCheckout(ctx, principal, orderID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*payment.CheckoutSession), nil
}

func (s *PaymentService) createCheckout(ctx context.Context, principal *access.Principal, orderID int) (*payment.CheckoutSession, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != principal.UserID {
		return nil, fmt.Errorf("%w: not your order", domain.ErrForbidden)
	}
	if order.Status != domain.StatusPending {
		return nil, fmt.Errorf("%w: invalid state, order is %s", domain.ErrInvalidRequest, order.Status)
	}

	description := fmt.Sprintf("Order #%d", order.ID)
	if order.RestaurantName != "" {
		description = "Order from " + order.RestaurantName
	}

	session, err := s.gateway.CreateCheckout(ctx, payment.CheckoutRequest{
		OrderID:     order.ID,
		CustomerID:  order.CustomerID,
		AmountCents: domain.ToCents(order.TotalAmount),
		Description: description,
		SuccessURL:  fmt.Sprintf("%s/orders?payment=success&order_id=%d", s.frontendURL, order.ID),
		CancelURL:   fmt.Sprintf("%s/orders?payment=cancelled&order_id=%d", s.frontendURL, order.ID),
	})
	if err != nil {
		slog.ErrorContext(ctx, "[order-svc] checkout failed", "order_id", order.ID, "error", err)
		return nil, err
	}

	slog.InfoContext(ctx, "[order-svc] checkout session created", "order_id", order.ID, "session_id", session.ID)
	return session, nil
}

// HandleWebhook verifies the callback before anything else is read or written.
// Redelivered events are acknowledged without a second transition.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.verifier.Verify(payload, signature)
	if err != nil {
		slog.WarnContext(ctx, "[order-svc] rejected payment webhook", "error", err)
		return err
	}

	if seen, err := s.marker.Seen(ctx, event.ID); err != nil {
		slog.WarnContext(ctx, "[order-svc] event marker unavailable", "event_id", event.ID, "error", err)
	} else if seen {
		slog.InfoContext(ctx, "[order-svc] duplicate payment event", "event_id", event.ID)
		return nil
	}

	switch event.Kind {
	case payment.EventSucceeded:
		if err := s.reconcilePaid(ctx, event); err != nil {
			return err
		}
	case payment.EventFailed:
		slog.WarnContext(ctx, "[order-svc] payment failed",
			"event_id", event.ID, "order_id", event.OrderID, "reference", event.Reference)
	default:
		slog.DebugContext(ctx, "[order-svc] ignoring payment event", "event_id", event.ID, "type", event.Type)
	}

	if err := s.marker.Mark(ctx, event.ID); err != nil {
		slog.WarnContext(ctx, "[order-svc] could not record payment event", "event_id", event.ID, "error", err)
	}
	return nil
}

func (s *PaymentService) reconcilePaid(ctx context.Context, event *payment.Event) error {
	var paid *domain.Order
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetOrderForUpdate(ctx, event.OrderID)
		if err != nil {
			return err
		}
		if order.Status != domain.StatusPending {
			slog.InfoContext(ctx, "[order-svc] order already past pending",
				"order_id", order.ID, "status", order.Status, "event_id", event.ID)
			return nil
		}
		if err := s.orders.UpdateOrderStatus(ctx, order.ID, domain.StatusPaid, nil); err != nil {
			return err
		}
		order.Status = domain.StatusPaid
		paid = order
		return nil
	})
	if errors.Is(err, domain.ErrNotFound) {
		slog.WarnContext(ctx, "[order-svc] payment for unknown order",
			"order_id", event.OrderID, "event_id", event.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reconcile order %d: %w", event.OrderID, err)
	}

	if paid != nil {
		slog.InfoContext(ctx, "[order-svc] order paid", "order_id", paid.ID, "reference", event.Reference)
		s.events.Send(domain.CustomerChannel(paid.CustomerID), domain.EventOrderUpdate, paid)
		s.events.Send(domain.RestaurantChannel(paid.RestaurantID), domain.EventOrderUpdate, paid)
	}
	return nil
}
