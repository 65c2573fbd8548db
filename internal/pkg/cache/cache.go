package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/insbu/portal/internal/pkg/env"
)

// ErrUnavailable is returned when the cache server could not be reached at setup.
var ErrUnavailable = errors.New("cache unavailable")

var (
	client    *redis.Client
	available bool
	setupOnce sync.Once
	ctx       = context.Background()
)

// SetupCache initializes the connection to the Redis compatible cache server
func SetupCache() {
	setupOnce.Do(func() {
		host := env.GetEnv("CACHE_HOST", "localhost")
		port := env.GetEnv("CACHE_PORT", "6379")

		client = redis.NewClient(&redis.Options{
			Addr:        fmt.Sprintf("%s:%s", host, port),
			Password:    env.GetEnv("CACHE_PASSWORD", ""),
			DB:          env.GetEnvInt("CACHE_DB", 0),
			DialTimeout: 2 * time.Second,
		})

		// Test the connection
		pong, err := client.Ping(ctx).Result()
		if err != nil {
			log.Warnf("[Cache] Could not connect to cache server, continuing without cache: %v", err)
			return
		}
		available = true
		log.Infof("[Cache] Successfully connected to cache server: %s", pong)
	})
}

// GetClient returns the Redis client instance, or nil when the server is unreachable
func GetClient() *redis.Client {
	SetupCache()
	if !available {
		return nil
	}
	return client
}

// Set stores a value in the cache with the given key and expiration time
func Set(key string, value interface{}, expiration time.Duration) error {
	c := GetClient()
	if c == nil {
		return ErrUnavailable
	}
	return c.Set(ctx, key, value, expiration).Err()
}

// Get retrieves a value from the cache by key
func Get(key string) (string, error) {
	c := GetClient()
	if c == nil {
		return "", ErrUnavailable
	}
	return c.Get(ctx, key).Result()
}

// Delete removes a value from the cache by key
func Delete(key string) error {
	c := GetClient()
	if c == nil {
		return ErrUnavailable
	}
	return c.Del(ctx, key).Err()
}

// IsMiss reports whether err means the key simply is not cached.
func IsMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}
