package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/Lixing-Zhang/restaurant-app/backend/internal/models"
	"github.com/Lixing-Zhang/restaurant-app/backend/internal/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	burger = models.Product{ID: "1", Name: "Hambúrguer Especial", Price: money.MustParse("29.90")}
	coke   = models.Product{ID: "2", Name: "Coca-Cola Zero 350ml", Price: money.MustParse("5.50")}
	fries  = models.Product{ID: "4", Name: "Batata Frita Porção Grande", Price: money.MustParse("18.90")}
)

// recordingSubmitter captures submitted orders and fails while err is set
type recordingSubmitter struct {
	mu     sync.Mutex
	err    error
	orders []models.OrderSnapshot
}

func (r *recordingSubmitter) SubmitOrder(ctx context.Context, order models.OrderSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.orders = append(r.orders, order)
	return nil
}

func newTestCart(submitter OrderSubmitter, opts ...CartOption) *Cart {
	return NewCart(money.MustParse("5.00"), submitter, opts...)
}

func TestCart_Totals_Scenario(t *testing.T) {
	cart := newTestCart(&recordingSubmitter{})
	require.NoError(t, cart.AddItem(burger, 2))
	require.NoError(t, cart.AddItem(coke, 2))

	totals := cart.ComputeTotals()
	assert.True(t, totals.Subtotal.Equal(money.MustParse("70.80")), "subtotal = %s", totals.Subtotal)
	assert.True(t, totals.DeliveryFee.Equal(money.MustParse("5.00")), "fee = %s", totals.DeliveryFee)
	assert.True(t, totals.Total.Equal(money.MustParse("75.80")), "total = %s", totals.Total)

	require.NoError(t, cart.RemoveItem("2"))

	totals = cart.ComputeTotals()
	assert.True(t, totals.Subtotal.Equal(money.MustParse("59.80")), "subtotal = %s", totals.Subtotal)
	assert.True(t, totals.Total.Equal(money.MustParse("64.80")), "total = %s", totals.Total)
}

func TestCart_EmptyTotals(t *testing.T) {
	cart := newTestCart(nil)

	totals := cart.ComputeTotals()
	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Total.Equal(money.MustParse("5.00")))
}

func TestCart_AddItem(t *testing.T) {
	tests := []struct {
		name     string
		adds     []int
		wantQty  int
		wantErr  error
		wantRows int
	}{
		{name: "single add", adds: []int{1}, wantQty: 1, wantRows: 1},
		{name: "duplicate add merges", adds: []int{1, 1}, wantQty: 2, wantRows: 1},
		{name: "add with quantity", adds: []int{3, 2}, wantQty: 5, wantRows: 1},
		{name: "zero quantity", adds: []int{0}, wantErr: ErrInvalidQuantity},
		{name: "negative quantity", adds: []int{-2}, wantErr: ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := newTestCart(nil)

			var err error
			for _, qty := range tt.adds {
				err = cart.AddItem(burger, qty)
			}

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, cart.IsEmpty())
				return
			}

			require.NoError(t, err)
			items := cart.Items()
			require.Len(t, items, tt.wantRows)
			assert.Equal(t, tt.wantQty, items[0].Quantity)
		})
	}
}

func TestCart_Items_InsertionOrder(t *testing.T) {
	cart := newTestCart(nil)
	require.NoError(t, cart.AddItem(fries, 1))
	require.NoError(t, cart.AddItem(burger, 1))
	require.NoError(t, cart.AddItem(coke, 1))
	require.NoError(t, cart.AddItem(fries, 1))

	items := cart.Items()
	require.Len(t, items, 3)
	assert.Equal(t, []string{"4", "1", "2"}, []string{items[0].ID, items[1].ID, items[2].ID})
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 4, cart.ItemCount())

	// mutating the returned slice must not leak into the cart
	items[0].Quantity = 99
	item, ok := cart.Item("4")
	require.True(t, ok)
	assert.Equal(t, 2, item.Quantity)
}

func TestCart_RemoveItem_UnknownIsNoop(t *testing.T) {
	cart := newTestCart(nil)
	require.NoError(t, cart.AddItem(burger, 1))

	assert.NoError(t, cart.RemoveItem("missing"))
	assert.Len(t, cart.Items(), 1)
}

func TestCart_SetQuantity(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		quantity int
		wantErr  error
		wantQty  int
	}{
		{name: "valid quantity", id: "1", quantity: 4, wantQty: 4},
		{name: "zero rejected", id: "1", quantity: 0, wantErr: ErrInvalidQuantity, wantQty: 2},
		{name: "negative rejected", id: "1", quantity: -1, wantErr: ErrInvalidQuantity, wantQty: 2},
		{name: "unknown id is noop", id: "missing", quantity: 7, wantQty: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := newTestCart(nil)
			require.NoError(t, cart.AddItem(burger, 2))
			before := cart.ComputeTotals()

			err := cart.SetQuantity(tt.id, tt.quantity)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, before.Total.Equal(cart.ComputeTotals().Total), "rejected call changed the cart")
			} else {
				assert.NoError(t, err)
			}

			item, ok := cart.Item("1")
			require.True(t, ok)
			assert.Equal(t, tt.wantQty, item.Quantity)
		})
	}
}

func TestCart_IncrementDecrement(t *testing.T) {
	cart := newTestCart(nil)
	require.NoError(t, cart.AddItem(coke, 1))

	assert.ErrorIs(t, cart.DecrementQuantity("2"), ErrInvalidQuantity)

	require.NoError(t, cart.IncrementQuantity("2"))
	require.NoError(t, cart.IncrementQuantity("2"))
	require.NoError(t, cart.DecrementQuantity("2"))

	item, _ := cart.Item("2")
	assert.Equal(t, 2, item.Quantity)

	line, ok := cart.LineTotal("2")
	require.True(t, ok)
	assert.True(t, line.Equal(money.MustParse("11.00")), "line total = %s", line)

	assert.NoError(t, cart.IncrementQuantity("missing"))
}

func TestCart_SubtotalMatchesItems_RandomSequences(t *testing.T) {
	catalog := []models.Product{burger, coke, fries}
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 50; run++ {
		cart := newTestCart(nil)
		for step := 0; step < 40; step++ {
			p := catalog[rng.Intn(len(catalog))]
			switch rng.Intn(4) {
			case 0, 1:
				_ = cart.AddItem(p, rng.Intn(3)+1)
			case 2:
				_ = cart.RemoveItem(p.ID)
			case 3:
				_ = cart.SetQuantity(p.ID, rng.Intn(5)-1)
			}

			want := decimal.Zero
			for _, item := range cart.Items() {
				require.GreaterOrEqual(t, item.Quantity, 1)
				want = want.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
			}
			totals := cart.ComputeTotals()
			require.True(t, totals.Subtotal.Equal(want), "run %d step %d: subtotal %s, want %s", run, step, totals.Subtotal, want)
			require.True(t, totals.Total.Equal(want.Add(money.MustParse("5.00"))))
		}
	}
}

func TestCart_SetPaymentMethod(t *testing.T) {
	cart := newTestCart(nil)

	assert.ErrorIs(t, cart.SetPaymentMethod("pix"), ErrInvalidPaymentMethod)
	assert.ErrorIs(t, cart.SetPaymentMethod(models.PaymentUnset), ErrInvalidPaymentMethod)
	assert.Equal(t, models.PaymentUnset, cart.PaymentMethod())

	require.NoError(t, cart.SetPaymentMethod(models.PaymentCash))
	assert.Equal(t, models.PaymentCash, cart.PaymentMethod())
}

func TestCart_CanCheckout(t *testing.T) {
	cart := newTestCart(&recordingSubmitter{})

	_, err := cart.Checkout(context.Background())
	assert.ErrorIs(t, err, ErrCheckoutNotReady)
	assert.False(t, cart.CanCheckout())

	require.NoError(t, cart.AddItem(burger, 1))
	assert.False(t, cart.CanCheckout(), "payment method is still unset")

	_, err = cart.Checkout(context.Background())
	assert.ErrorIs(t, err, ErrCheckoutNotReady)

	require.NoError(t, cart.SetPaymentMethod(models.PaymentCard))
	assert.True(t, cart.CanCheckout())
}

func TestCart_Checkout_Success(t *testing.T) {
	submitter := &recordingSubmitter{}
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	cart := newTestCart(submitter,
		WithOrderIDGenerator(func() string { return "order-1" }),
		WithCartClock(func() time.Time { return now }),
	)
	require.NoError(t, cart.AddItem(burger, 2))
	require.NoError(t, cart.AddItem(coke, 2))
	require.NoError(t, cart.SetPaymentMethod(models.PaymentCard))

	snapshot, err := cart.Checkout(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "order-1", snapshot.ID)
	assert.Equal(t, now, snapshot.CreatedAt)
	assert.Equal(t, models.PaymentCard, snapshot.PaymentMethod)
	assert.Len(t, snapshot.Items, 2)
	assert.True(t, snapshot.Subtotal.Equal(money.MustParse("70.80")))
	assert.True(t, snapshot.Total.Equal(money.MustParse("75.80")))

	require.Len(t, submitter.orders, 1)
	assert.Equal(t, "order-1", submitter.orders[0].ID)

	assert.True(t, cart.IsEmpty())
	assert.Equal(t, models.PaymentUnset, cart.PaymentMethod())
	assert.False(t, cart.Submitting())
}

func TestCart_Checkout_FailurePreservesState(t *testing.T) {
	submitter := &recordingSubmitter{err: errors.New("order service unavailable")}
	cart := newTestCart(submitter)
	require.NoError(t, cart.AddItem(burger, 2))
	require.NoError(t, cart.SetPaymentMethod(models.PaymentCash))
	itemsBefore := cart.Items()

	snapshot, err := cart.Checkout(context.Background())
	assert.Nil(t, snapshot)
	assert.ErrorIs(t, err, ErrSubmissionFailed)
	assert.Contains(t, err.Error(), "order service unavailable")

	assert.Equal(t, itemsBefore, cart.Items())
	assert.Equal(t, models.PaymentCash, cart.PaymentMethod())
	assert.False(t, cart.Submitting())

	// retry succeeds once the service recovers
	submitter.err = nil
	_, err = cart.Checkout(context.Background())
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestCart_Checkout_TimeoutIsFailure(t *testing.T) {
	slow := OrderSubmitterFunc(func(ctx context.Context, order models.OrderSnapshot) error {
		<-ctx.Done()
		return ctx.Err()
	})
	cart := newTestCart(slow, WithCheckoutTimeout(20*time.Millisecond))
	require.NoError(t, cart.AddItem(fries, 1))
	require.NoError(t, cart.SetPaymentMethod(models.PaymentCard))

	_, err := cart.Checkout(context.Background())
	assert.ErrorIs(t, err, ErrSubmissionFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, cart.Items(), 1)
	assert.True(t, cart.CanCheckout())
}

func TestCart_Checkout_CancelledContextNeverSubmits(t *testing.T) {
	submitter := &recordingSubmitter{}
	cart := newTestCart(submitter)
	require.NoError(t, cart.AddItem(fries, 1))
	require.NoError(t, cart.SetPaymentMethod(models.PaymentCard))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cart.Checkout(ctx)
	assert.ErrorIs(t, err, ErrSubmissionFailed)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, submitter.orders)
	assert.Len(t, cart.Items(), 1)
}

func TestCart_Checkout_SingleInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	blocking := OrderSubmitterFunc(func(ctx context.Context, order models.OrderSnapshot) error {
		close(started)
		<-release
		return nil
	})

	cart := newTestCart(blocking)
	require.NoError(t, cart.AddItem(burger, 1))
	require.NoError(t, cart.SetPaymentMethod(models.PaymentCard))

	done := make(chan error, 1)
	go func() {
		_, err := cart.Checkout(context.Background())
		done <- err
	}()

	<-started
	assert.True(t, cart.Submitting())

	_, err := cart.Checkout(context.Background())
	assert.ErrorIs(t, err, ErrSubmissionInProgress)
	assert.ErrorIs(t, cart.AddItem(coke, 1), ErrSubmissionInProgress)
	assert.ErrorIs(t, cart.RemoveItem("1"), ErrSubmissionInProgress)
	assert.ErrorIs(t, cart.SetQuantity("1", 3), ErrSubmissionInProgress)
	assert.ErrorIs(t, cart.SetPaymentMethod(models.PaymentCash), ErrSubmissionInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, cart.Submitting())
	assert.True(t, cart.IsEmpty())
}

func TestCart_Checkout_NoSubmitter(t *testing.T) {
	cart := newTestCart(nil)
	require.NoError(t, cart.AddItem(burger, 1))
	require.NoError(t, cart.SetPaymentMethod(models.PaymentCard))

	_, err := cart.Checkout(context.Background())
	assert.ErrorIs(t, err, ErrSubmissionFailed)
	assert.Len(t, cart.Items(), 1)
}
