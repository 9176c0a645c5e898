package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"delivery-optimizer/internal/ports"
)

// RedisMatrixCache is a shared matrix-cache tier over Redis, so repeated
// optimizations across processes reuse provider results. Entries expire
// to pick up road-network updates eventually.
type RedisMatrixCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisMatrixCache(url string, ttl time.Duration) (*RedisMatrixCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis matrix cache: parse url: %w", err)
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &RedisMatrixCache{rdb: redis.NewClient(opt), ttl: ttl}, nil
}

// GetMany fetches cached legs with a single MGET.
func (c *RedisMatrixCache) GetMany(ctx context.Context, keys []ports.PairKey) (map[ports.PairKey]ports.TravelLeg, error) {
	if len(keys) == 0 {
		return map[ports.PairKey]ports.TravelLeg{}, nil
	}

	rkeys := make([]string, len(keys))
	for i, k := range keys {
		rkeys[i] = redisKey(k)
	}

	vals, err := c.rdb.MGet(ctx, rkeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis matrix cache: mget: %w", err)
	}

	out := make(map[ports.PairKey]ports.TravelLeg, len(keys))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		leg, err := decodeLeg(s)
		if err != nil {
			// A corrupt entry is treated as a miss and overwritten later.
			continue
		}
		out[keys[i]] = leg
	}
	return out, nil
}

// PutMany stores legs with a pipelined SET; per-key atomicity comes from
// Redis itself, so concurrent fillers cannot tear an entry.
func (c *RedisMatrixCache) PutMany(ctx context.Context, legs map[ports.PairKey]ports.TravelLeg) error {
	if len(legs) == 0 {
		return nil
	}

	pipe := c.rdb.Pipeline()
	for k, leg := range legs {
		pipe.Set(ctx, redisKey(k), encodeLeg(leg), c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis matrix cache: pipeline exec: %w", err)
	}
	return nil
}

func redisKey(k ports.PairKey) string { return "matrix:" + string(k) }

func encodeLeg(leg ports.TravelLeg) string {
	return strconv.FormatFloat(leg.DistanceMeters, 'f', 1, 64) + "|" +
		strconv.FormatFloat(leg.DurationSeconds, 'f', 1, 64)
}

func decodeLeg(s string) (ports.TravelLeg, error) {
	parts := strings.SplitN(s, "|", 2)
	if len(parts) != 2 {
		return ports.TravelLeg{}, fmt.Errorf("malformed leg %q", s)
	}
	meters, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return ports.TravelLeg{}, fmt.Errorf("malformed leg %q", s)
	}
	seconds, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return ports.TravelLeg{}, fmt.Errorf("malformed leg %q", s)
	}
	return ports.TravelLeg{DistanceMeters: meters, DurationSeconds: seconds}, nil
}
