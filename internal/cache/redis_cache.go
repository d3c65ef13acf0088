package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/LeventeLantos/sms-dashboard/internal/model"
)

type RedisSessionCache struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ SessionCache = (*RedisSessionCache)(nil)

func NewRedisSessionCache(rdb *redis.Client, ttl time.Duration) *RedisSessionCache {
	return &RedisSessionCache{rdb: rdb, ttl: ttl}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s:sms_log", sessionID)
}

func (c *RedisSessionCache) Get(ctx context.Context, sessionID string) ([]model.Record, error) {
	raw, err := c.rdb.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var records []model.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode session log: %w", err)
	}
	return records, nil
}

// Set replaces the session's records and refreshes its TTL.
func (c *RedisSessionCache) Set(ctx context.Context, sessionID string, records []model.Record) error {
	b, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, sessionKey(sessionID), b, c.ttl).Err()
}
