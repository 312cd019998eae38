package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Lixing-Zhang/restaurant-app/backend/internal/models"
	"github.com/go-redis/redis/v8"
)

// DefaultTablesKey is the Redis hash holding the floor plan, one field per table id
const DefaultTablesKey = "restaurant:tables"

// RedisTableRepository reads table availability from a Redis hash maintained
// by the reservation service. Each field value is a JSON encoded table.
type RedisTableRepository struct {
	client *redis.Client
	key    string
}

// NewRedisTableRepository creates a repository reading the given hash key
func NewRedisTableRepository(client *redis.Client, key string) *RedisTableRepository {
	if key == "" {
		key = DefaultTablesKey
	}
	return &RedisTableRepository{
		client: client,
		key:    key,
	}
}

// Ping checks the Redis server is reachable
func (r *RedisTableRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// ListTables returns every table ordered by number
func (r *RedisTableRepository) ListTables(ctx context.Context) ([]models.Table, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read tables from redis: %w", err)
	}

	tables := make([]models.Table, 0, len(fields))
	for id, raw := range fields {
		var t models.Table
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return nil, fmt.Errorf("table %s: invalid payload: %w", id, err)
		}
		if _, err := models.ParseTableStatus(string(t.Status)); err != nil {
			return nil, fmt.Errorf("table %s: %w", id, err)
		}
		t.ID = id
		tables = append(tables, t)
	}

	sortTables(tables)
	return tables, nil
}

// Put writes a table into the hash
func (r *RedisTableRepository) Put(ctx context.Context, t models.Table) error {
	if _, err := models.ParseTableStatus(string(t.Status)); err != nil {
		return err
	}

	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode table %s: %w", t.ID, err)
	}

	if err := r.client.HSet(ctx, r.key, t.ID, payload).Err(); err != nil {
		return fmt.Errorf("failed to write table %s: %w", t.ID, err)
	}
	return nil
}

// SetStatus changes the base status of an existing table
func (r *RedisTableRepository) SetStatus(ctx context.Context, id string, status models.TableStatus) error {
	if _, err := models.ParseTableStatus(string(status)); err != nil {
		return err
	}

	raw, err := r.client.HGet(ctx, r.key, id).Result()
	if errors.Is(err, redis.Nil) {
		return ErrTableNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read table %s: %w", id, err)
	}

	var t models.Table
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return fmt.Errorf("table %s: invalid payload: %w", id, err)
	}
	t.ID = id
	t.Status = status
	return r.Put(ctx, t)
}

// SeedIfEmpty writes tables only when the hash does not exist yet
func (r *RedisTableRepository) SeedIfEmpty(ctx context.Context, tables []models.Table) (bool, error) {
	n, err := r.client.Exists(ctx, r.key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check tables key: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	for _, t := range tables {
		if err := r.Put(ctx, t); err != nil {
			return false, err
		}
	}
	return true, nil
}
