package config

import (
	"context"
	"crypto/tls"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds a client from REDIS_* environment variables and
// pings it.  A nil return means Redis is unreachable; callers run without
// rate limiting and response caching rather than refusing to start.
func NewRedisClient() *redis.Client {
	addr := getenv("REDIS_ADDR", "")
	if addr == "" {
		addr = getenv("REDIS_HOST", "localhost") + ":" + getenv("REDIS_PORT", "6379")
	}
	opts := &redis.Options{
		Addr:     addr,
		Password: getenv("REDIS_PASSWORD", ""),
		DB:       envInt("REDIS_DB", 0),
	}
	if envBool("REDIS_TLS", false) {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("config: redis unreachable at %s: %v", addr, err)
		return nil
	}
	return client
}
