package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/Lixing-Zhang/restaurant-app/backend/internal/models"
	"github.com/Lixing-Zhang/restaurant-app/backend/internal/service"
	"github.com/Lixing-Zhang/restaurant-app/backend/internal/session"
	"github.com/Lixing-Zhang/restaurant-app/backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCartRouter(t *testing.T, sess *session.Session) http.Handler {
	handler := NewCartHandler(testProductService(), testFormatter(t), logger.New("error"))

	r := chi.NewRouter()
	r.Use(injectSession(sess))
	r.Get("/api/cart", handler.GetCart)
	r.Post("/api/cart/items", handler.AddItem)
	r.Put("/api/cart/items/{itemId}", handler.UpdateItem)
	r.Delete("/api/cart/items/{itemId}", handler.RemoveItem)
	r.Post("/api/cart/items/{itemId}/increment", handler.IncrementItem)
	r.Post("/api/cart/items/{itemId}/decrement", handler.DecrementItem)
	r.Put("/api/cart/payment", handler.SetPayment)
	r.Post("/api/cart/checkout", handler.Checkout)
	return r
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCartHandler_EmptyCart(t *testing.T) {
	r := newCartRouter(t, testSession(t, nil, nil))

	w := doJSON(t, r, http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var cart CartView
	decodeBody(t, w, &cart)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.Totals.Subtotal.IsZero())
	assert.True(t, cart.Totals.Total.Equal(dec("5.00")), "delivery fee applies to an empty cart")
	assert.Equal(t, "BRL", cart.Currency)
	assert.False(t, cart.CanCheckout)
}

func TestCartHandler_AddAndAdjust(t *testing.T) {
	r := newCartRouter(t, testSession(t, nil, nil))

	w := doJSON(t, r, http.MethodPost, "/api/cart/items", AddItemRequest{ProductID: "1"})
	require.Equal(t, http.StatusOK, w.Code)

	qty := 2
	w = doJSON(t, r, http.MethodPost, "/api/cart/items", AddItemRequest{ProductID: "3", Quantity: &qty})
	require.Equal(t, http.StatusOK, w.Code)

	// same product again merges into the existing line
	w = doJSON(t, r, http.MethodPost, "/api/cart/items", AddItemRequest{ProductID: "1"})
	require.Equal(t, http.StatusOK, w.Code)

	var cart CartView
	decodeBody(t, w, &cart)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, "1", cart.Items[0].ID)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.True(t, cart.Items[0].LineTotal.Equal(dec("59.80")))
	assert.Equal(t, 4, cart.ItemCount)
	assert.True(t, cart.Totals.Subtotal.Equal(dec("76.80")))
	assert.True(t, cart.Totals.Total.Equal(dec("81.80")))

	w = doJSON(t, r, http.MethodPost, "/api/cart/items/3/decrement", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/cart/items/3/decrement", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "a line never drops below 1")

	w = doJSON(t, r, http.MethodPut, "/api/cart/items/1", UpdateItemRequest{Quantity: 5})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/cart/items/1/increment", nil)
	require.Equal(t, http.StatusOK, w.Code)

	decodeBody(t, w, &cart)
	assert.Equal(t, 6, cart.Items[0].Quantity)
	assert.Equal(t, 1, cart.Items[1].Quantity)

	w = doJSON(t, r, http.MethodDelete, "/api/cart/items/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &cart)
	require.Len(t, cart.Items, 1)
	assert.True(t, cart.Totals.Total.Equal(dec("13.50")))
}

func TestCartHandler_Errors(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           string
		body           interface{}
		expectedStatus int
	}{
		{"unknown product", http.MethodPost, "/api/cart/items", AddItemRequest{ProductID: "99"}, http.StatusNotFound},
		{"missing product id", http.MethodPost, "/api/cart/items", AddItemRequest{}, http.StatusBadRequest},
		{"zero quantity", http.MethodPost, "/api/cart/items", map[string]interface{}{"productId": "1", "quantity": 0}, http.StatusBadRequest},
		{"invalid JSON", http.MethodPost, "/api/cart/items", "invalid json", http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/cart/items", map[string]string{"product": "1"}, http.StatusBadRequest},
		{"update unknown item", http.MethodPut, "/api/cart/items/99", UpdateItemRequest{Quantity: 1}, http.StatusNotFound},
		{"increment unknown item", http.MethodPost, "/api/cart/items/99/increment", nil, http.StatusNotFound},
		{"bad payment method", http.MethodPut, "/api/cart/payment", PaymentRequest{Method: "pix"}, http.StatusBadRequest},
		{"checkout empty cart", http.MethodPost, "/api/cart/checkout", nil, http.StatusBadRequest},
		{"remove unknown item", http.MethodDelete, "/api/cart/items/99", nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newCartRouter(t, testSession(t, nil, nil))
			w := doJSON(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestCartHandler_Checkout(t *testing.T) {
	var received []models.OrderSnapshot
	submitter := service.OrderSubmitterFunc(func(ctx context.Context, order models.OrderSnapshot) error {
		received = append(received, order)
		return nil
	})
	r := newCartRouter(t, testSession(t, submitter, nil))

	doJSON(t, r, http.MethodPost, "/api/cart/items", AddItemRequest{ProductID: "2"})

	w := doJSON(t, r, http.MethodPost, "/api/cart/checkout", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "payment method is required")

	w = doJSON(t, r, http.MethodPut, "/api/cart/payment", PaymentRequest{Method: "CARD"})
	require.Equal(t, http.StatusOK, w.Code)
	var cart CartView
	decodeBody(t, w, &cart)
	assert.Equal(t, models.PaymentCard, cart.PaymentMethod)
	assert.True(t, cart.CanCheckout)

	w = doJSON(t, r, http.MethodPost, "/api/cart/checkout", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var order OrderView
	decodeBody(t, w, &order)
	require.NotNil(t, order.Order)
	assert.NotEmpty(t, order.Order.ID)
	assert.True(t, order.Order.Total.Equal(dec("37.50")))
	assert.NotEmpty(t, order.FormattedTotal)
	require.Len(t, received, 1)
	assert.Equal(t, order.Order.ID, received[0].ID)

	w = doJSON(t, r, http.MethodGet, "/api/cart", nil)
	decodeBody(t, w, &cart)
	assert.Empty(t, cart.Items)
	assert.Equal(t, models.PaymentUnset, cart.PaymentMethod)
}

func TestCartHandler_CheckoutFailureKeepsCart(t *testing.T) {
	submitter := service.OrderSubmitterFunc(func(ctx context.Context, order models.OrderSnapshot) error {
		return errors.New("order service unavailable")
	})
	r := newCartRouter(t, testSession(t, submitter, nil))

	doJSON(t, r, http.MethodPost, "/api/cart/items", AddItemRequest{ProductID: "1"})
	doJSON(t, r, http.MethodPut, "/api/cart/payment", PaymentRequest{Method: "cash"})

	w := doJSON(t, r, http.MethodPost, "/api/cart/checkout", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/cart", nil)
	var cart CartView
	decodeBody(t, w, &cart)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, models.PaymentCash, cart.PaymentMethod)
	assert.True(t, cart.CanCheckout)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrInvalidQuantity, http.StatusBadRequest},
		{service.ErrCheckoutNotReady, http.StatusBadRequest},
		{service.ErrUnknownField, http.StatusBadRequest},
		{service.ErrTableNotFound, http.StatusNotFound},
		{errItemNotFound, http.StatusNotFound},
		{service.ErrTableUnavailable, http.StatusConflict},
		{service.ErrSubmissionInProgress, http.StatusConflict},
		{errors.Join(service.ErrSubmissionFailed, context.DeadlineExceeded), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}
