// Package cache stores estimated date bounds in Redis so repeated timeline
// requests skip the statistics aggregation.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/email-analytics/internal/domain"
	infralogger "github.com/jonesrussell/north-cloud/email-analytics/internal/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/telemetry"
)

const (
	// keyPrefix is the Redis key prefix for cached bounds.
	keyPrefix = "email-analytics:bounds:"
	// connectionTimeout is the timeout for verifying the Redis connection.
	connectionTimeout = 5 * time.Second
)

// ErrEmptyAddress is returned when the Redis address is not configured.
var ErrEmptyAddress = errors.New("redis address is required")

// Config holds Redis connection configuration.
type Config struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

// NewClient creates a Redis client and verifies the connection.
func NewClient(cfg Config) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// BoundsCache keeps date bounds per index and document type.
type BoundsCache struct {
	client    *redis.Client
	ttl       time.Duration
	telemetry *telemetry.Provider
	logger    infralogger.Logger
}

// NewBoundsCache creates a BoundsCache. A zero ttl keeps entries until evicted.
// tel may be nil.
func NewBoundsCache(client *redis.Client, ttl time.Duration, tel *telemetry.Provider, log infralogger.Logger) *BoundsCache {
	return &BoundsCache{
		client:    client,
		ttl:       ttl,
		telemetry: tel,
		logger:    log,
	}
}

func key(index, docType string) string {
	return keyPrefix + index + ":" + docType
}

// Get returns the cached bounds. The boolean is false on a miss.
func (c *BoundsCache) Get(ctx context.Context, index, docType string) (domain.DateBounds, bool, error) {
	data, err := c.client.Get(ctx, key(index, docType)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.record(false)
		return domain.DateBounds{}, false, nil
	}
	if err != nil {
		return domain.DateBounds{}, false, fmt.Errorf("failed to get cached bounds: %w", err)
	}

	var bounds domain.DateBounds
	if unmarshalErr := json.Unmarshal(data, &bounds); unmarshalErr != nil {
		c.record(false)
		return domain.DateBounds{}, false, fmt.Errorf("failed to unmarshal cached bounds: %w", unmarshalErr)
	}

	c.record(true)
	return bounds, true, nil
}

// Set stores bounds for index and docType.
func (c *BoundsCache) Set(ctx context.Context, index, docType string, bounds domain.DateBounds) error {
	data, err := json.Marshal(bounds)
	if err != nil {
		return fmt.Errorf("failed to marshal bounds: %w", err)
	}

	if setErr := c.client.Set(ctx, key(index, docType), data, c.ttl).Err(); setErr != nil {
		return fmt.Errorf("failed to cache bounds: %w", setErr)
	}

	c.logger.Debug("Cached date bounds",
		infralogger.String("index", index),
		infralogger.String("doc_type", docType),
		infralogger.Duration("ttl", c.ttl),
	)
	return nil
}

// Invalidate drops the cached bounds of every document type of index.
func (c *BoundsCache) Invalidate(ctx context.Context, index string) error {
	for _, docType := range []string{domain.DocTypeEmails, domain.DocTypeAttachments, domain.DocTypeEmailAddress} {
		if err := c.client.Del(ctx, key(index, docType)).Err(); err != nil {
			return fmt.Errorf("failed to invalidate bounds: %w", err)
		}
	}
	return nil
}

func (c *BoundsCache) record(hit bool) {
	if c.telemetry != nil {
		c.telemetry.RecordCacheLookup(hit)
	}
}
