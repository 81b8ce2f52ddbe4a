package config

import (
	"sync"

	"github.com/redis/go-redis/v9"
)

// SetRedisClientForTest swaps the shared client, typically for a redismock
// client. Passing nil makes the rate limiter fall back to in-process counting.
func SetRedisClientForTest(client *redis.Client) {
	redisMu.Lock()
	defer redisMu.Unlock()
	redisClient = client
}

// ResetRedisClientForTest clears the client and lets ConnectRedis run again.
func ResetRedisClientForTest() {
	redisMu.Lock()
	redisClient = nil
	redisOnce = sync.Once{}
	redisMu.Unlock()
}
