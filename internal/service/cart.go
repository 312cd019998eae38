package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Lixing-Zhang/restaurant-app/backend/internal/models"
	"github.com/Lixing-Zhang/restaurant-app/backend/internal/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart holds the line items of one session and gates checkout behind a
// payment method. Items are keyed by product id, so adding a product that is
// already in the cart increments its quantity instead of adding a second row.
type Cart struct {
	mu sync.Mutex

	items       map[string]*models.CartItem
	order       []string // insertion order of item ids
	deliveryFee decimal.Decimal
	payment     models.PaymentMethod
	submitting  bool

	submitter     OrderSubmitter
	submitTimeout time.Duration
	newID         func() string
	now           func() time.Time
	log           *slog.Logger
}

// CartOption customizes a Cart
type CartOption func(*Cart)

// WithCartLogger sets the logger used for cart transitions
func WithCartLogger(log *slog.Logger) CartOption {
	return func(c *Cart) {
		if log != nil {
			c.log = log
		}
	}
}

// WithCheckoutTimeout bounds how long Checkout waits for the order service
func WithCheckoutTimeout(d time.Duration) CartOption {
	return func(c *Cart) {
		c.submitTimeout = d
	}
}

// WithOrderIDGenerator replaces the uuid order id generator
func WithOrderIDGenerator(fn func() string) CartOption {
	return func(c *Cart) {
		c.newID = fn
	}
}

// WithCartClock replaces time.Now for snapshot timestamps
func WithCartClock(fn func() time.Time) CartOption {
	return func(c *Cart) {
		c.now = fn
	}
}

// NewCart creates an empty cart with a fixed delivery fee
func NewCart(deliveryFee decimal.Decimal, submitter OrderSubmitter, opts ...CartOption) *Cart {
	c := &Cart{
		items:       make(map[string]*models.CartItem),
		deliveryFee: deliveryFee,
		submitter:   submitter,
		newID:       func() string { return uuid.New().String() },
		now:         time.Now,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddItem adds quantity units of p. If p is already in the cart its quantity
// is incremented.
func (c *Cart) AddItem(p models.Product, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.submitting {
		return ErrSubmissionInProgress
	}

	if item, ok := c.items[p.ID]; ok {
		item.Quantity += quantity
		c.log.Debug("cart item incremented", "item_id", p.ID, "quantity", item.Quantity)
		return nil
	}

	c.items[p.ID] = &models.CartItem{
		ID:        p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  quantity,
	}
	c.order = append(c.order, p.ID)
	c.log.Debug("cart item added", "item_id", p.ID, "quantity", quantity)
	return nil
}

// RemoveItem deletes the line with the given id. Unknown ids are ignored.
func (c *Cart) RemoveItem(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.submitting {
		return ErrSubmissionInProgress
	}

	if _, ok := c.items[id]; !ok {
		return nil
	}

	delete(c.items, id)
	for i, itemID := range c.order {
		if itemID == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.log.Debug("cart item removed", "item_id", id)
	return nil
}

// SetQuantity replaces the quantity of a line. Reaching zero is done with
// RemoveItem; quantities below 1 are rejected. Unknown ids are ignored.
func (c *Cart) SetQuantity(id string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.submitting {
		return ErrSubmissionInProgress
	}

	item, ok := c.items[id]
	if !ok {
		return nil
	}
	item.Quantity = quantity
	c.log.Debug("cart item quantity set", "item_id", id, "quantity", quantity)
	return nil
}

// IncrementQuantity adds one unit to a line
func (c *Cart) IncrementQuantity(id string) error {
	return c.adjustQuantity(id, 1)
}

// DecrementQuantity removes one unit from a line; it never takes a line below 1
func (c *Cart) DecrementQuantity(id string) error {
	return c.adjustQuantity(id, -1)
}

func (c *Cart) adjustQuantity(id string, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.submitting {
		return ErrSubmissionInProgress
	}

	item, ok := c.items[id]
	if !ok {
		return nil
	}
	if item.Quantity+delta < 1 {
		return ErrInvalidQuantity
	}
	item.Quantity += delta
	return nil
}

// SetPaymentMethod selects card or cash
func (c *Cart) SetPaymentMethod(m models.PaymentMethod) error {
	if !m.Valid() {
		return ErrInvalidPaymentMethod
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.submitting {
		return ErrSubmissionInProgress
	}
	c.payment = m
	return nil
}

// PaymentMethod returns the selected method, PaymentUnset if none
func (c *Cart) PaymentMethod() models.PaymentMethod {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.payment
}

// Items returns a copy of the lines in insertion order
func (c *Cart) Items() []models.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.itemsLocked()
}

// Item returns a copy of a single line
func (c *Cart) Item(id string) (models.CartItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[id]
	if !ok {
		return models.CartItem{}, false
	}
	return *item, true
}

// LineTotal returns unitPrice × quantity for one line
func (c *Cart) LineTotal(id string) (decimal.Decimal, bool) {
	item, ok := c.Item(id)
	if !ok {
		return decimal.Zero, false
	}
	return money.LineTotal(item.UnitPrice, item.Quantity), true
}

// ItemCount returns the total number of units across all lines
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items) == 0
}

// ComputeTotals derives subtotal and total from the current lines on every call
func (c *Cart) ComputeTotals() models.Totals {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalsLocked()
}

// CanCheckout reports whether the cart has items and a payment method
func (c *Cart) CanCheckout() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canCheckoutLocked()
}

// Submitting reports whether a checkout is waiting on the order service
func (c *Cart) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// Checkout snapshots the cart and hands it to the order service. The cart is
// cleared only after the service acknowledges; on failure, timeout or
// cancellation it is left exactly as it was and the error wraps
// ErrSubmissionFailed.
func (c *Cart) Checkout(ctx context.Context) (*models.OrderSnapshot, error) {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return nil, ErrSubmissionInProgress
	}
	if !c.canCheckoutLocked() {
		c.mu.Unlock()
		return nil, ErrCheckoutNotReady
	}

	totals := c.totalsLocked()
	snapshot := models.OrderSnapshot{
		ID:            c.newID(),
		Items:         c.itemsLocked(),
		Subtotal:      totals.Subtotal,
		DeliveryFee:   totals.DeliveryFee,
		Total:         totals.Total,
		PaymentMethod: c.payment,
		CreatedAt:     c.now().UTC(),
	}
	c.submitting = true
	c.mu.Unlock()

	log := c.log.With("order_id", snapshot.ID)
	log.Debug("checkout started", "items_count", len(snapshot.Items), "total", snapshot.Total.String())

	err := c.submit(ctx, snapshot)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false

	if err != nil {
		log.Warn("checkout failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	c.items = make(map[string]*models.CartItem)
	c.order = nil
	c.payment = models.PaymentUnset
	log.Info("checkout acknowledged", "total", snapshot.Total.String(), "payment_method", string(snapshot.PaymentMethod))

	return &snapshot, nil
}

func (c *Cart) submit(ctx context.Context, snapshot models.OrderSnapshot) error {
	if c.submitter == nil {
		return fmt.Errorf("no order submitter configured")
	}
	if c.submitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.submitTimeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.submitter.SubmitOrder(ctx, snapshot)
}

func (c *Cart) itemsLocked() []models.CartItem {
	items := make([]models.CartItem, 0, len(c.order))
	for _, id := range c.order {
		items = append(items, *c.items[id])
	}
	return items
}

func (c *Cart) totalsLocked() models.Totals {
	subtotal := decimal.Zero
	for _, item := range c.items {
		subtotal = subtotal.Add(money.LineTotal(item.UnitPrice, item.Quantity))
	}
	return models.Totals{
		Subtotal:    subtotal,
		DeliveryFee: c.deliveryFee,
		Total:       subtotal.Add(c.deliveryFee),
	}
}

func (c *Cart) canCheckoutLocked() bool {
	return len(c.items) > 0 && c.payment.Valid()
}
