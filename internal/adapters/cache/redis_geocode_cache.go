package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"present-delivery-service/internal/domain"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const geocodeKeyPrefix = "geocode:"

type cachedAddress struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Text string  `json:"text"`
}

// RedisGeocodeCache is a Redis-backed cache mapping normalized addresses to
// geocoded results.
type RedisGeocodeCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisGeocodeCache(rdb *redis.Client, ttl time.Duration) *RedisGeocodeCache {
	return &RedisGeocodeCache{rdb: rdb, ttl: ttl}
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}

// Fetch a cached address.
func (c *RedisGeocodeCache) Get(ctx context.Context, key string) (domain.Address, bool, error) {
	if c.rdb == nil {
		return domain.Address{}, false, errors.New("geocode cache: redis client is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return domain.Address{}, false, nil
	}

	raw, err := c.rdb.Get(ctx, geocodeKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Address{}, false, nil
	}
	if err != nil {
		return domain.Address{}, false, fmt.Errorf("get geocode cache %q: %w", key, err)
	}

	var ca cachedAddress
	if err := json.Unmarshal(raw, &ca); err != nil {
		return domain.Address{}, false, fmt.Errorf("get geocode cache %q: decode: %w", key, err)
	}

	return domain.Address{
		Point: domain.GeoPoint{Latitude: ca.Lat, Longitude: ca.Lon},
		Text:  ca.Text,
	}, true, nil
}

// Store an address under key.
func (c *RedisGeocodeCache) Put(ctx context.Context, key string, addr domain.Address) error {
	if c.rdb == nil {
		return errors.New("geocode cache: redis client is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("insert geocode cache: empty address key")
	}

	data, err := json.Marshal(cachedAddress{
		Lat:  addr.Point.Latitude,
		Lon:  addr.Point.Longitude,
		Text: addr.Text,
	})
	if err != nil {
		return fmt.Errorf("insert geocode cache %q: encode: %w", key, err)
	}

	if err := c.rdb.Set(ctx, geocodeKeyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("insert geocode cache %q: %w", key, err)
	}

	return nil
}
