// Package cache keeps extraction results for generic URLs so repeated runs
// skip the model call while the stored result is fresh.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"internship_fetcher/internal/domain"
)

const keyPrefix = "extract:"

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

type ExtractionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewExtractionCache(client *redis.Client, ttl time.Duration) *ExtractionCache {
	return &ExtractionCache{client: client, ttl: ttl}
}

// Get returns the cached fields for pageURL. A miss is (nil, nil).
func (c *ExtractionCache) Get(ctx context.Context, pageURL string) (*domain.Fields, error) {
	data, err := c.client.Get(ctx, Key(pageURL)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached extraction: %w", err)
	}

	var fields domain.Fields
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode cached extraction: %w", err)
	}

	return &fields, nil
}

func (c *ExtractionCache) Set(ctx context.Context, pageURL string, fields *domain.Fields) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode extraction: %w", err)
	}

	if err := c.client.Set(ctx, Key(pageURL), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached extraction: %w", err)
	}
	return nil
}

func Key(pageURL string) string {
	sum := sha256.Sum256([]byte(pageURL))
	return keyPrefix + hex.EncodeToString(sum[:])
}
