package repository

import (
	"context"
	"errors"

	"github.com/Lixing-Zhang/restaurant-app/backend/internal/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for catalog data access
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Categories(ctx context.Context) ([]models.Category, error)
}

// InMemoryProductRepository implements ProductRepository over a fixed catalog
type InMemoryProductRepository struct {
	products   map[string]models.Product
	order      []string
	categories []models.Category
}

// NewInMemoryProductRepository creates a repository holding the given
// products, listed in the order supplied
func NewInMemoryProductRepository(products []models.Product, categories []models.Category) *InMemoryProductRepository {
	repo := &InMemoryProductRepository{
		products:   make(map[string]models.Product, len(products)),
		order:      make([]string, 0, len(products)),
		categories: categories,
	}
	for _, p := range products {
		if _, exists := repo.products[p.ID]; !exists {
			repo.order = append(repo.order, p.ID)
		}
		repo.products[p.ID] = p
	}
	return repo
}

// GetAll returns all products
func (r *InMemoryProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	products := make([]models.Product, 0, len(r.order))
	for _, id := range r.order {
		products = append(products, r.products[id])
	}
	return products, nil
}

// GetByID returns a product by its ID
func (r *InMemoryProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	product, exists := r.products[id]
	if !exists {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

// Categories returns the menu categories
func (r *InMemoryProductRepository) Categories(ctx context.Context) ([]models.Category, error) {
	categories := make([]models.Category, len(r.categories))
	copy(categories, r.categories)
	return categories, nil
}
