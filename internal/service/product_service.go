package service

import (
	"context"
	"strings"

	"github.com/Lixing-Zhang/restaurant-app/backend/internal/models"
	"github.com/Lixing-Zhang/restaurant-app/backend/internal/repository"
)

// ProductFilter narrows the menu listing. Zero values match everything.
type ProductFilter struct {
	Category string
	Query    string
}

// ProductService handles business logic for the menu catalog
type ProductService struct {
	repo repository.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// ListProducts returns the products matching filter in catalog order.
// Query matches name or description, case-insensitively.
func (s *ProductService) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	category := strings.TrimSpace(filter.Category)
	if category == AllCategory.ID {
		category = ""
	}
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	if category == "" && query == "" {
		return products, nil
	}

	matched := make([]models.Product, 0, len(products))
	for _, p := range products {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		matched = append(matched, p)
	}
	return matched, nil
}

// GetProduct returns a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// AllCategory is the menu filter matching every product. ListCategories
// always returns it first.
var AllCategory = models.Category{ID: "all", Name: "Todos"}

// ListCategories returns the menu categories, led by AllCategory
func (s *ProductService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, err
	}

	all := AllCategory
	out := make([]models.Category, 0, len(categories)+1)
	for _, c := range categories {
		if c.ID == AllCategory.ID {
			all = c
			continue
		}
		out = append(out, c)
	}
	return append([]models.Category{all}, out...), nil
}
