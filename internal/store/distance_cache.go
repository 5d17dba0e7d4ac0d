package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"vrppd/internal/vrp/distance"
	"vrppd/internal/vrp/model"
)

// RedisDistanceCache caches a problem's distance matrices under a key
// derived from its vehicles, orders, and distance function name, so
// repeated heuristic runs (and repeated exact re-solves) of the same
// problem don't pay for O(orders^2) recomputation each time.
type RedisDistanceCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisDistanceCache(url string) (*RedisDistanceCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("distance cache: parse redis url: %w", err)
	}
	return &RedisDistanceCache{rdb: redis.NewClient(opt), ttl: time.Hour}, nil
}

// Key derives a stable cache key from the problem's coordinates and the
// distance function's name; callers own naming their distance.Func
// (e.g. "haversine", "euclidean") since distance.Func values aren't
// comparable across packages.
func Key(p model.Problem, distName string) string {
	h := sha256.New()
	for _, v := range p.Vehicles {
		fmt.Fprintf(h, "v:%d:%f:%f\n", v.ID, v.StartLocation.Latitude, v.StartLocation.Longitude)
	}
	for _, o := range p.Orders {
		fmt.Fprintf(h, "o:%d:%f:%f:%f:%f\n", o.ID, o.PickupLocation.Latitude, o.PickupLocation.Longitude, o.DeliveryLocation.Latitude, o.DeliveryLocation.Longitude)
	}
	fmt.Fprintf(h, "dist:%s\n", distName)
	return "vrp:dm:" + hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached matrices for key, or ok=false on a miss.
func (c *RedisDistanceCache) Get(ctx context.Context, key string) (distance.Matrices, bool, error) {
	body, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return distance.Matrices{}, false, nil
	}
	if err != nil {
		return distance.Matrices{}, false, fmt.Errorf("distance cache: get: %w", err)
	}
	var m distance.Matrices
	if err := json.Unmarshal(body, &m); err != nil {
		return distance.Matrices{}, false, fmt.Errorf("distance cache: decode: %w", err)
	}
	return m, true, nil
}

// Set stores m under key with the cache's TTL.
func (c *RedisDistanceCache) Set(ctx context.Context, key string, m distance.Matrices) error {
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("distance cache: encode: %w", err)
	}
	if err := c.rdb.Set(ctx, key, body, c.ttl).Err(); err != nil {
		return fmt.Errorf("distance cache: set: %w", err)
	}
	return nil
}
