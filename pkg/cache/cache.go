// Package cache provides a Redis read-through cache for single product lookups.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"catalog/internal/models"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "catalog:product:"

// ProductCache stores serialized products keyed by ID.
type ProductCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// Config holds Redis connection details.
type Config struct {
	Addr string
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// NewProductCache wraps client. A non-positive ttl disables writes.
func NewProductCache(client redis.UniversalClient, ttl time.Duration) *ProductCache {
	return &ProductCache{
		client: client,
		prefix: defaultPrefix,
		ttl:    ttl,
	}
}

func (c *ProductCache) key(id string) string {
	return c.prefix + id
}

// Get returns the cached product and whether it was found.
func (c *ProductCache) Get(ctx context.Context, id string) (*models.Product, bool, error) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", id, err)
	}
	var product models.Product
	if err := json.Unmarshal(raw, &product); err != nil {
		return nil, false, fmt.Errorf("cache decode %s: %w", id, err)
	}
	return &product, true, nil
}

// Set stores product under its ID.
func (c *ProductCache) Set(ctx context.Context, product *models.Product) error {
	if c.ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", product.ID, err)
	}
	if err := c.client.Set(ctx, c.key(product.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", product.ID, err)
	}
	return nil
}

// Invalidate drops the entry for id.
func (c *ProductCache) Invalidate(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		return fmt.Errorf("cache invalidate %s: %w", id, err)
	}
	return nil
}
