package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/derrickshema/recipe-manager/order-svc/internal/domain"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

type CheckoutRequest struct {
	OrderID     int
	CustomerID  int
	AmountCents int64
	Currency    string
	Description string
	SuccessURL  string
	CancelURL   string
}

type CheckoutSession struct {
	ID  string `json:"session_id"`
	URL string `json:"checkout_url"`
}

// StripeGateway creates hosted checkout sessions. stripe-go types stay in this package.
type StripeGateway struct {
	client *client.API
}

func NewStripeGateway(apiKey string, backends *stripe.Backends) *StripeGateway {
	sc := &client.API{}
	sc.Init(apiKey, backends)
	return &StripeGateway{client: sc}
}

func (g *StripeGateway) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if req.AmountCents <= 0 {
		return nil, fmt.Errorf("%w: checkout amount must be positive", domain.ErrInvalidRequest)
	}

	currency := req.Currency
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	orderID := strconv.Itoa(req.OrderID)
	customerID := strconv.Itoa(req.CustomerID)

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		ClientReferenceID:  stripe.String(orderID),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String("Order #" + orderID),
						Description: stripe.String(req.Description),
					},
					UnitAmount: stripe.Int64(req.AmountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{"order_id": orderID},
		},
	}
	params.AddMetadata("order_id", orderID)
	params.AddMetadata("customer_id", customerID)
	params.Context = ctx

	session, err := g.client.CheckoutSessions.New(params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

// mapStripeError folds every gateway failure into domain.ErrUpstream.
func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: payment provider unavailable", domain.ErrUpstream)
		}
		return fmt.Errorf("%w: payment provider rejected checkout: %s", domain.ErrUpstream, stripeErr.Msg)
	}
	return fmt.Errorf("%w: payment provider: %v", domain.ErrUpstream, err)
}
