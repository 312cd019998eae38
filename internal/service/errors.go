package service

import "errors"

var (
	// Cart
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrInvalidPaymentMethod = errors.New("payment method must be card or cash")
	ErrCheckoutNotReady     = errors.New("cart needs at least one item and a payment method")

	// Reservation
	ErrTableNotFound         = errors.New("table not found")
	ErrTableUnavailable      = errors.New("table is not available")
	ErrUnknownField          = errors.New("unknown reservation field")
	ErrIncompleteReservation = errors.New("reservation needs a table and every form field")

	// Submission
	ErrSubmissionFailed     = errors.New("submission failed")
	ErrSubmissionInProgress = errors.New("a submission is already in progress")
)
