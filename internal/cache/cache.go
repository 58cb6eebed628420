package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cricketbet/internal/cricket"

	"github.com/redis/go-redis/v9"
)

const matchListKey = "cricketbet:matches:upstream"

func ConnectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// MatchCache keeps the last upstream match list for a short TTL.
type MatchCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewMatchCache(rdb *redis.Client, ttl time.Duration) *MatchCache {
	return &MatchCache{rdb: rdb, ttl: ttl}
}

func (c *MatchCache) GetMatches(ctx context.Context) ([]cricket.Match, bool, error) {
	b, err := c.rdb.Get(ctx, matchListKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var matches []cricket.Match
	if err := json.Unmarshal(b, &matches); err != nil {
		return nil, false, fmt.Errorf("decode cached matches: %w", err)
	}
	return matches, true, nil
}

func (c *MatchCache) SetMatches(ctx context.Context, matches []cricket.Match) error {
	b, err := json.Marshal(matches)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, matchListKey, b, c.ttl).Err()
}
