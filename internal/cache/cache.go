package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// latestKey holds the most recent enriched event.
	latestKey = "tradepulse:market:latest"

	// latestTTL expires stale snapshots when the pipeline is down.
	latestTTL = time.Hour
)

// Cache keeps the latest enriched event in Redis so late-joining
// subscribers and the REST surface can read it without touching the
// ingestion loop.
type Cache struct {
	client *redis.Client
	logger zerolog.Logger
}

// New connects to Redis. An unreachable Redis is logged rather than
// fatal: the pipeline runs without snapshots until it comes back.
func New(addr, password string, db int, logger zerolog.Logger) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", addr).Msg("Redis unreachable, snapshots degraded")
	} else {
		logger.Info().Str("addr", addr).Msg("Connected to Redis")
	}

	return &Cache{client: client, logger: logger}
}

// SetLatest stores the encoded event under the snapshot key.
func (c *Cache) SetLatest(ctx context.Context, payload []byte) error {
	return c.client.Set(ctx, latestKey, payload, latestTTL).Err()
}

// Latest returns the stored event payload, or nil when none exists.
func (c *Cache) Latest(ctx context.Context) ([]byte, error) {
	payload, err := c.client.Get(ctx, latestKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// Ping reports whether Redis is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}
