package service

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// PickupQRGenerator encodes the order tracking page shown at pickup.
type PickupQRGenerator struct {
	FrontendURL string
}

func (g PickupQRGenerator) Link(orderID int) string {
	return fmt.Sprintf("%s/orders/%d", g.FrontendURL, orderID)
}

func (g PickupQRGenerator) Generate(orderID int) ([]byte, error) {
	return qrcode.Encode(g.Link(orderID), qrcode.Medium, 256)
}
