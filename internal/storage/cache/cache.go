package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tuanvumaihuynh/inventory-backoffice/internal/config"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/model"
)

// SnapshotKey is the Redis key holding the cached dashboard snapshot.
const SnapshotKey = "inventory:stats:snapshot"

// ErrCacheMiss is returned by Get when no snapshot is cached.
var ErrCacheMiss = errors.New("cache miss")

// SnapshotCache stores the last computed dashboard snapshot.
type SnapshotCache interface {
	Get(ctx context.Context) (model.StatsSnapshot, error)
	Set(ctx context.Context, snapshot model.StatsSnapshot) error
	Invalidate(ctx context.Context) error
}

var (
	_ SnapshotCache = (*RedisSnapshotCache)(nil)
	_ SnapshotCache = NoopSnapshotCache{}
)

type RedisSnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisSnapshotCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisSnapshotCache {
	return &RedisSnapshotCache{
		client: client,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "snapshot_cache")),
	}
}

func (c *RedisSnapshotCache) Get(ctx context.Context) (model.StatsSnapshot, error) {
	data, err := c.client.Get(ctx, SnapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.StatsSnapshot{}, ErrCacheMiss
		}
		return model.StatsSnapshot{}, fmt.Errorf("redis get: %w", err)
	}

	var snapshot model.StatsSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return model.StatsSnapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	c.logger.DebugContext(ctx, "snapshot cache hit")
	return snapshot, nil
}

func (c *RedisSnapshotCache) Set(ctx context.Context, snapshot model.StatsSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := c.client.Set(ctx, SnapshotKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

func (c *RedisSnapshotCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, SnapshotKey).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}

	c.logger.DebugContext(ctx, "snapshot cache invalidated")
	return nil
}

// NoopSnapshotCache always misses. Used when Redis is not configured.
type NoopSnapshotCache struct{}

func (NoopSnapshotCache) Get(context.Context) (model.StatsSnapshot, error) {
	return model.StatsSnapshot{}, ErrCacheMiss
}

func (NoopSnapshotCache) Set(context.Context, model.StatsSnapshot) error { return nil }

func (NoopSnapshotCache) Invalidate(context.Context) error { return nil }

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}
