// Package submission contains the collaborators that hand finished orders and
// reservations to the external services.
package submission

import (
	"context"
	"log/slog"

	"github.com/Lixing-Zhang/restaurant-app/backend/internal/models"
)

// LogSubmitter acknowledges every submission after logging it. It is used
// when no order or reservation service is configured.
type LogSubmitter struct {
	log *slog.Logger
}

// NewLogSubmitter creates a submitter that only logs
func NewLogSubmitter(log *slog.Logger) *LogSubmitter {
	return &LogSubmitter{log: log}
}

// SubmitOrder logs the order and acknowledges it
func (s *LogSubmitter) SubmitOrder(ctx context.Context, order models.OrderSnapshot) error {
	s.log.InfoContext(ctx, "order submitted",
		"order_id", order.ID,
		"items_count", len(order.Items),
		"subtotal", order.Subtotal.String(),
		"delivery_fee", order.DeliveryFee.String(),
		"total", order.Total.String(),
		"payment_method", string(order.PaymentMethod),
	)
	return nil
}

// SubmitReservation logs the reservation and acknowledges it
func (s *LogSubmitter) SubmitReservation(ctx context.Context, req models.ReservationRequest) error {
	s.log.InfoContext(ctx, "reservation submitted",
		"reservation_id", req.ID,
		"table_id", req.TableID,
		"date", req.Date,
		"time", req.Time,
		"party_size", req.PartySize,
	)
	return nil
}
