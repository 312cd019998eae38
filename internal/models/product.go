package models

import "github.com/shopspring/decimal"

// Product represents a menu item supplied by the catalog.
// The cart trusts these values verbatim.
type Product struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description,omitempty" yaml:"description"`
	Price       decimal.Decimal `json:"price" yaml:"price"`
	Category    string          `json:"category" yaml:"category"`
	ImageURL    string          `json:"imageUrl,omitempty" yaml:"image_url"`
}

// Category groups products on the menu screen
type Category struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}
