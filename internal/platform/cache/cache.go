package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

var (
	ErrMiss    = errors.New("cache: key not found")
	ErrKeyNone = errors.New("cache: key cannot be empty")
)

// Key namespaces.
const (
	PrefixCatalog = "learnit:catalog:"
	PrefixTiers   = "learnit:tiers:"
)

type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type redisCache struct {
	rdb *goredis.Client
	log *logger.Logger
}

// NewRedis wraps an already connected client.
func NewRedis(rdb *goredis.Client, baseLog *logger.Logger) Cache {
	return &redisCache{rdb: rdb, log: baseLog.With("component", "RedisCache")}
}

func (c *redisCache) Get(ctx context.Context, key string, dest any) error {
	if key == "" {
		return ErrKeyNone
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return ErrMiss
		}
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("cache decode %s: %w", key, err)
	}
	return nil
}

func (c *redisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if key == "" {
		return ErrKeyNone
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

type nopCache struct{}

// Nop never stores anything; every Get is a miss.
func Nop() Cache { return nopCache{} }

func (nopCache) Get(context.Context, string, any) error { return ErrMiss }
func (nopCache) Set(context.Context, string, any, time.Duration) error { return nil }
func (nopCache) Delete(context.Context, ...string) error { return nil }

// GetOrLoad is cache-aside: a hit is returned as is, a miss calls load and
// stores the result. Cache failures never fail the call.
func GetOrLoad[T any](ctx context.Context, c Cache, log *logger.Logger, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var out T
	if c == nil {
		return load(ctx)
	}
	err := c.Get(ctx, key, &out)
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, ErrMiss) && log != nil {
		log.Warn("cache read failed", "key", key, "error", err)
	}
	out, err = load(ctx)
	if err != nil {
		return out, err
	}
	if err := c.Set(ctx, key, out, ttl); err != nil && log != nil {
		log.Warn("cache write failed", "key", key, "error", err)
	}
	return out, nil
}
