package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxItemQuantity bounds a single order line.
const MaxItemQuantity = 1000

var (
	hundred = decimal.NewFromInt(100)

	// MaxAmount is the largest value a NUMERIC(10,2) column holds.
	MaxAmount = decimal.RequireFromString("99999999.99")
)

// LineSubtotal is unit price times quantity, kept at two decimal places.
func LineSubtotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// SumSubtotals totals the frozen subtotals of an order.
func SumSubtotals(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	return total.Round(2)
}

// ToCents converts an amount to the gateway's minor unit using banker's rounding.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).RoundBank(0).IntPart()
}

// ValidatePrice accepts a non-negative amount with at most two fractional digits.
func ValidatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidRequest)
	}
	if !price.Equal(price.Round(2)) {
		return fmt.Errorf("%w: price has more than two decimal places", ErrInvalidRequest)
	}
	if price.GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: price exceeds %s", ErrInvalidRequest, MaxAmount.StringFixed(2))
	}
	return nil
}

// Amounts are rendered as fixed two-place strings ("26.00", not "26").

func (o Order) MarshalJSON() ([]byte, error) {
	type plain Order
	return json.Marshal(struct {
		plain
		TotalAmount string `json:"total_amount"`
	}{plain(o), o.TotalAmount.StringFixed(2)})
}

func (i OrderItem) MarshalJSON() ([]byte, error) {
	type plain OrderItem
	return json.Marshal(struct {
		plain
		UnitPrice string `json:"unit_price"`
		Subtotal  string `json:"subtotal"`
	}{plain(i), i.UnitPrice.StringFixed(2), i.Subtotal.StringFixed(2)})
}

func (r Recipe) MarshalJSON() ([]byte, error) {
	type plain Recipe
	return json.Marshal(struct {
		plain
		Price string `json:"price"`
	}{plain(r), r.Price.StringFixed(2)})
}
