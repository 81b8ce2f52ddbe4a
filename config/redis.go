package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var (
	redisMu     sync.RWMutex
	redisClient *redis.Client
	redisOnce   sync.Once
)

// RedisEnabled reports whether REDIS_ENABLED is set to a truthy value.
func RedisEnabled() bool {
	enabled, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv("REDIS_ENABLED")))
	return enabled
}

// ConnectRedis initializes a singleton Redis client based on environment variables.
// It returns nil without error when REDIS_ENABLED is not true, so callers fall
// back to in-process behaviour.
func ConnectRedis() (*redis.Client, error) {
	var err error
	redisOnce.Do(func() {
		if !RedisEnabled() {
			return
		}

		addr := os.Getenv("REDIS_ADDR")
		if addr == "" {
			addr = "localhost:6379"
		}
		dbNum := 0
		if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
			if v, e := strconv.Atoi(dbStr); e == nil {
				dbNum = v
			}
		}

		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       dbNum,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err = rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			err = fmt.Errorf("redis ping failed: %w", err)
			return
		}

		redisMu.Lock()
		redisClient = rdb
		redisMu.Unlock()
		log.Info().Str("addr", addr).Msg("connected to redis")
	})
	return GetRedisClient(), err
}

// GetRedisClient returns the initialized Redis client (may be nil if ConnectRedis failed or not called).
func GetRedisClient() *redis.Client {
	redisMu.RLock()
	defer redisMu.RUnlock()
	return redisClient
}
