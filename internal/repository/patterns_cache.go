package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kuesten-code/Werkbank-sub000/constants"
	"github.com/kuesten-code/Werkbank-sub000/internal/entity"
)

const patternCachePrefix = "intake:patterns:"

type cachedPatternStore struct {
	next   PatternStore
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedPatternStore puts a Redis read-through cache of the per-supplier
// pattern list in front of next. Cache failures are logged and bypassed.
func NewCachedPatternStore(next PatternStore, client *redis.Client, ttl time.Duration, logger *slog.Logger) PatternStore {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &cachedPatternStore{next: next, client: client, ttl: ttl, logger: logger}
}

func patternCacheKey(supplierID uuid.UUID) string {
	return patternCachePrefix + supplierID.String()
}

func (c *cachedPatternStore) Get(ctx context.Context, supplierID uuid.UUID, field constants.FieldName) (*entity.SupplierPattern, error) {
	all, err := c.GetAll(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	for _, p := range all {
		if p.FieldName == field {
			return p, nil
		}
	}
	return nil, nil
}

func (c *cachedPatternStore) GetAll(ctx context.Context, supplierID uuid.UUID) ([]*entity.SupplierPattern, error) {
	key := patternCacheKey(supplierID)

	val, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		var cached []*entity.SupplierPattern
		if jerr := json.Unmarshal([]byte(val), &cached); jerr == nil {
			return cached, nil
		}
		c.logger.Warn("discarding corrupt pattern cache entry", "key", key)
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("pattern cache read failed", "key", key, "error", err)
	}

	all, err := c.next.GetAll(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if err := c.set(ctx, key, all); err != nil {
		c.logger.Warn("pattern cache write failed", "key", key, "error", err)
	}
	return all, nil
}

func (c *cachedPatternStore) Upsert(ctx context.Context, supplierID uuid.UUID, field constants.FieldName, pattern string) error {
	if err := c.next.Upsert(ctx, supplierID, field, pattern); err != nil {
		return err
	}
	key := patternCacheKey(supplierID)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("pattern cache invalidation failed", "key", key, "error", err)
	}
	return nil
}

func (c *cachedPatternStore) set(ctx context.Context, key string, value []*entity.SupplierPattern) error {
	if value == nil {
		value = []*entity.SupplierPattern{}
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal patterns: %w", err)
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}
