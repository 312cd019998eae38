package service

import (
	"context"

	"github.com/Lixing-Zhang/restaurant-app/backend/internal/models"
)

// OrderSubmitter hands a finished order to the external order service.
// A nil error is the acknowledgement; anything else leaves the cart intact.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, order models.OrderSnapshot) error
}

// ReservationSubmitter hands a finished reservation to the external reservation service
type ReservationSubmitter interface {
	SubmitReservation(ctx context.Context, req models.ReservationRequest) error
}

// TableSource supplies the authoritative base status of every table
type TableSource interface {
	ListTables(ctx context.Context) ([]models.Table, error)
}

// OrderSubmitterFunc adapts a function to OrderSubmitter
type OrderSubmitterFunc func(ctx context.Context, order models.OrderSnapshot) error

func (f OrderSubmitterFunc) SubmitOrder(ctx context.Context, order models.OrderSnapshot) error {
	return f(ctx, order)
}

// ReservationSubmitterFunc adapts a function to ReservationSubmitter
type ReservationSubmitterFunc func(ctx context.Context, req models.ReservationRequest) error

func (f ReservationSubmitterFunc) SubmitReservation(ctx context.Context, req models.ReservationRequest) error {
	return f(ctx, req)
}
