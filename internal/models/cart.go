package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how the customer pays on delivery
type PaymentMethod string

const (
	PaymentUnset PaymentMethod = ""
	PaymentCard  PaymentMethod = "card"
	PaymentCash  PaymentMethod = "cash"
)

// Valid reports whether m is one of the selectable methods
func (m PaymentMethod) Valid() bool {
	return m == PaymentCard || m == PaymentCash
}

// ParsePaymentMethod accepts "card" or "cash", case-insensitively
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return PaymentUnset, fmt.Errorf("unknown payment method %q", s)
	}
	return m, nil
}

// CartItem is one distinct product line in a cart. Quantity is always >= 1.
type CartItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// Totals is the derived monetary summary of a cart
type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Total       decimal.Decimal `json:"total"`
}
