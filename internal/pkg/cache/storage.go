package cache

import (
	"net"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/redis"

	"github.com/insbu/portal/internal/pkg/env"
)

// LimiterDatabase is the Redis database the rate limiter counters live in.
// The cache itself uses database 0.
const LimiterDatabase = 1

// NewFiberStorage returns a fiber.Storage on the cache server, or nil when
// the cache is unavailable so callers fall back to in-memory storage.
func NewFiberStorage(database int) fiber.Storage {
	cacheClient := GetClient()
	if cacheClient == nil {
		return nil
	}

	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	addr := cacheClient.Options().Addr
	if h, p, err := net.SplitHostPort(addr); err == nil {
		host = h
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}
	if p := cacheClient.Options().Password; p != "" {
		password = p
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: database,
		Reset:    false,
	})
}
