package repository

import (
	"context"
	"fmt"

	"github.com/Lixing-Zhang/restaurant-app/backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const listTablesQuery = `
	SELECT id::text, number, seats, status::text
	FROM restaurant_tables
	ORDER BY number`

// PostgresTableRepository reads table availability from the reservation
// service's restaurant_tables table. It never writes.
type PostgresTableRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTableRepository creates a connection pool and verifies it with a ping
func NewPostgresTableRepository(ctx context.Context, databaseURL string) (*PostgresTableRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresTableRepository{pool: pool}, nil
}

// ListTables returns every table ordered by number
func (r *PostgresTableRepository) ListTables(ctx context.Context) ([]models.Table, error) {
	rows, err := r.pool.Query(ctx, listTablesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}

	tables, err := pgx.CollectRows(rows, scanTable)
	if err != nil {
		return nil, fmt.Errorf("failed to scan tables: %w", err)
	}
	return tables, nil
}

// Ping checks the database is reachable
func (r *PostgresTableRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close releases the connection pool
func (r *PostgresTableRepository) Close() {
	r.pool.Close()
}

func scanTable(row pgx.CollectableRow) (models.Table, error) {
	var (
		t      models.Table
		status string
	)
	if err := row.Scan(&t.ID, &t.Number, &t.Seats, &status); err != nil {
		return models.Table{}, err
	}

	parsed, err := models.ParseTableStatus(status)
	if err != nil {
		return models.Table{}, fmt.Errorf("table %s: %w", t.ID, err)
	}
	t.Status = parsed
	return t, nil
}
