package repository

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Lixing-Zhang/restaurant-app/backend/internal/models"
)

var (
	ErrTableNotFound = errors.New("table not found")
)

// InMemoryTableRepository is a table availability source backed by the seed
// floor plan. Statuses change through the admin table endpoint.
type InMemoryTableRepository struct {
	mu     sync.RWMutex
	tables []models.Table
}

// NewInMemoryTableRepository creates a repository holding a copy of tables
func NewInMemoryTableRepository(tables []models.Table) *InMemoryTableRepository {
	copied := make([]models.Table, len(tables))
	copy(copied, tables)
	sortTables(copied)
	return &InMemoryTableRepository{tables: copied}
}

// ListTables returns every table ordered by number
func (r *InMemoryTableRepository) ListTables(ctx context.Context) ([]models.Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tables := make([]models.Table, len(r.tables))
	copy(tables, r.tables)
	return tables, nil
}

// SetStatus changes the base status of a table
func (r *InMemoryTableRepository) SetStatus(ctx context.Context, id string, status models.TableStatus) error {
	if !status.IsBase() {
		_, err := models.ParseTableStatus(string(status))
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.tables {
		if r.tables[i].ID == id {
			r.tables[i].Status = status
			return nil
		}
	}
	return ErrTableNotFound
}

func sortTables(tables []models.Table) {
	sort.SliceStable(tables, func(i, j int) bool {
		return tables[i].Number < tables[j].Number
	})
}
