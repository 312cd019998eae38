package handlers

import (
	"github.com/Lixing-Zhang/restaurant-app/backend/internal/models"
	"github.com/Lixing-Zhang/restaurant-app/backend/internal/money"
	"github.com/Lixing-Zhang/restaurant-app/backend/internal/service"
	"github.com/shopspring/decimal"
)

// ProductView is a menu entry with its display price
type ProductView struct {
	models.Product
	FormattedPrice string `json:"formattedPrice"`
}

// CartItemView is one cart line with its derived total
type CartItemView struct {
	models.CartItem
	LineTotal          decimal.Decimal `json:"lineTotal"`
	FormattedUnitPrice string          `json:"formattedUnitPrice"`
	FormattedLineTotal string          `json:"formattedLineTotal"`
}

// FormattedTotals holds the totals as display strings
type FormattedTotals struct {
	Subtotal    string `json:"subtotal"`
	DeliveryFee string `json:"deliveryFee"`
	Total       string `json:"total"`
}

// CartView is the response body of every cart endpoint
type CartView struct {
	Items         []CartItemView       `json:"items"`
	ItemCount     int                  `json:"itemCount"`
	Totals        models.Totals        `json:"totals"`
	Formatted     FormattedTotals      `json:"formatted"`
	Currency      string               `json:"currency"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	CanCheckout   bool                 `json:"canCheckout"`
	Submitting    bool                 `json:"submitting"`
}

// OrderView is the acknowledged order returned by checkout
type OrderView struct {
	Order          *models.OrderSnapshot `json:"order"`
	FormattedTotal string                `json:"formattedTotal"`
}

// TableResponse is a table with the selection overlay folded into its status
type TableResponse struct {
	ID       string             `json:"id"`
	Number   int                `json:"number"`
	Seats    int                `json:"seats"`
	Status   models.TableStatus `json:"status"`
	Selected bool               `json:"selected"`
}

// ReservationView is the response body of every reservation endpoint
type ReservationView struct {
	Tables          []TableResponse        `json:"tables"`
	SelectedTableID string                 `json:"selectedTableId,omitempty"`
	Form            models.ReservationForm `json:"form"`
	CanSubmit       bool                   `json:"canSubmit"`
	Submitting      bool                   `json:"submitting"`
}

func newProductView(p models.Product, f *money.Formatter) ProductView {
	return ProductView{Product: p, FormattedPrice: f.Format(p.Price)}
}

func newCartView(cart *service.Cart, f *money.Formatter) CartView {
	items := cart.Items()
	views := make([]CartItemView, len(items))
	for i, item := range items {
		total := money.LineTotal(item.UnitPrice, item.Quantity)
		views[i] = CartItemView{
			CartItem:           item,
			LineTotal:          total,
			FormattedUnitPrice: f.Format(item.UnitPrice),
			FormattedLineTotal: f.Format(total),
		}
	}

	totals := cart.ComputeTotals()
	return CartView{
		Items:     views,
		ItemCount: cart.ItemCount(),
		Totals:    totals,
		Formatted: FormattedTotals{
			Subtotal:    f.Format(totals.Subtotal),
			DeliveryFee: f.Format(totals.DeliveryFee),
			Total:       f.Format(totals.Total),
		},
		Currency:      f.Currency(),
		PaymentMethod: cart.PaymentMethod(),
		CanCheckout:   cart.CanCheckout(),
		Submitting:    cart.Submitting(),
	}
}

func newReservationView(s *service.ReservationSelector) ReservationView {
	tables := s.Tables()
	views := make([]TableResponse, len(tables))
	for i, t := range tables {
		views[i] = TableResponse{
			ID:       t.ID,
			Number:   t.Number,
			Seats:    t.Seats,
			Status:   t.DisplayStatus(),
			Selected: t.Selected,
		}
	}

	selected, _ := s.SelectedTableID()
	return ReservationView{
		Tables:          views,
		SelectedTableID: selected,
		Form:            s.Form(),
		CanSubmit:       s.CanSubmit(),
		Submitting:      s.Submitting(),
	}
}
