package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/restaurant-app/backend/internal/middleware"
	"github.com/Lixing-Zhang/restaurant-app/backend/internal/models"
	"github.com/Lixing-Zhang/restaurant-app/backend/internal/money"
	"github.com/Lixing-Zhang/restaurant-app/backend/internal/service"
	"github.com/go-chi/chi/v5"
)

var errItemNotFound = errors.New("item is not in the cart")

// CartHandler exposes the session cart
type CartHandler struct {
	products  *service.ProductService
	formatter *money.Formatter
	log       *slog.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(products *service.ProductService, formatter *money.Formatter, log *slog.Logger) *CartHandler {
	return &CartHandler{
		products:  products,
		formatter: formatter,
		log:       log,
	}
}

// AddItemRequest is the body of POST /api/cart/items. Quantity defaults to 1.
type AddItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity,omitempty"`
}

// UpdateItemRequest is the body of PUT /api/cart/items/{itemId}
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// PaymentRequest is the body of PUT /api/cart/payment
type PaymentRequest struct {
	Method string `json:"method"`
}

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.cart(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, newCartView(cart, h.formatter), h.log)
}

// AddItem handles POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.cart(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log.Warn("failed to decode add item request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}
	if req.ProductID == "" {
		WriteError(w, http.StatusBadRequest, "productId is required", h.log)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	product, err := h.products.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		WriteServiceError(w, err, h.log)
		return
	}

	if err := cart.AddItem(*product, quantity); err != nil {
		WriteServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, newCartView(cart, h.formatter), h.log)
}

// UpdateItem handles PUT /api/cart/items/{itemId}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	cart, itemID, ok := h.cartItem(w, r)
	if !ok {
		return
	}

	var req UpdateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log.Warn("failed to decode update item request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	if err := cart.SetQuantity(itemID, req.Quantity); err != nil {
		WriteServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, newCartView(cart, h.formatter), h.log)
}

// IncrementItem handles POST /api/cart/items/{itemId}/increment
func (h *CartHandler) IncrementItem(w http.ResponseWriter, r *http.Request) {
	cart, itemID, ok := h.cartItem(w, r)
	if !ok {
		return
	}

	if err := cart.IncrementQuantity(itemID); err != nil {
		WriteServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, newCartView(cart, h.formatter), h.log)
}

// DecrementItem handles POST /api/cart/items/{itemId}/decrement
// A line at quantity 1 is rejected; use DELETE to remove it.
func (h *CartHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	cart, itemID, ok := h.cartItem(w, r)
	if !ok {
		return
	}

	if err := cart.DecrementQuantity(itemID); err != nil {
		WriteServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, newCartView(cart, h.formatter), h.log)
}

// RemoveItem handles DELETE /api/cart/items/{itemId}
// Removing an item that is not in the cart succeeds.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.cart(w, r)
	if !ok {
		return
	}

	if err := cart.RemoveItem(chi.URLParam(r, "itemId")); err != nil {
		WriteServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, newCartView(cart, h.formatter), h.log)
}

// SetPayment handles PUT /api/cart/payment
func (h *CartHandler) SetPayment(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.cart(w, r)
	if !ok {
		return
	}

	var req PaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log.Warn("failed to decode payment request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	method, err := models.ParsePaymentMethod(req.Method)
	if err != nil {
		WriteServiceError(w, service.ErrInvalidPaymentMethod, h.log)
		return
	}

	if err := cart.SetPaymentMethod(method); err != nil {
		WriteServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, newCartView(cart, h.formatter), h.log)
}

// Checkout handles POST /api/cart/checkout
// - 201: order acknowledged, cart cleared
// - 400: cart empty or no payment method
// - 409: a checkout is already in flight
// - 502: the order service rejected the order or timed out; cart kept
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.cart(w, r)
	if !ok {
		return
	}

	order, err := cart.Checkout(r.Context())
	if err != nil {
		WriteServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusCreated, OrderView{
		Order:          order,
		FormattedTotal: h.formatter.Format(order.Total),
	}, h.log)
	h.log.Info("order placed", "order_id", order.ID, "items_count", len(order.Items))
}

func (h *CartHandler) cart(w http.ResponseWriter, r *http.Request) (*service.Cart, bool) {
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Session required", h.log)
		return nil, false
	}
	return sess.Cart, true
}

// cartItem resolves the session cart and checks the {itemId} line exists
func (h *CartHandler) cartItem(w http.ResponseWriter, r *http.Request) (*service.Cart, string, bool) {
	cart, ok := h.cart(w, r)
	if !ok {
		return nil, "", false
	}

	itemID := chi.URLParam(r, "itemId")
	if _, exists := cart.Item(itemID); !exists {
		WriteServiceError(w, errItemNotFound, h.log)
		return nil, "", false
	}
	return cart, itemID, true
}
