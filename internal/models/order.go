package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSnapshot is the immutable copy of a cart handed to the order service.
// ID is minted before submission so the receiver can dedupe retries.
type OrderSnapshot struct {
	ID            string          `json:"id"`
	Items         []CartItem      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	DeliveryFee   decimal.Decimal `json:"deliveryFee"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	CreatedAt     time.Time       `json:"createdAt"`
}
