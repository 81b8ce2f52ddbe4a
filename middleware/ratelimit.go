package middleware

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ariebrainware/hospital-booking/config"
	"github.com/ariebrainware/hospital-booking/util"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	// Rate limiting defaults
	defaultRateLimit  = 5                // 5 attempts
	defaultRateWindow = 15 * time.Minute // per 15 minutes
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

type localClient struct {
	lim  *rate.Limiter
	seen time.Time
}

// localLimiter is the in-process fallback used when Redis is unavailable.
type localLimiter struct {
	mu      sync.Mutex
	clients map[string]*localClient
	r       rate.Limit
	burst   int
	idle    time.Duration
}

func newLocalLimiter(cfg RateLimitConfig) *localLimiter {
	return &localLimiter{
		clients: make(map[string]*localClient),
		r:       rate.Every(cfg.Window / time.Duration(cfg.Limit)),
		burst:   cfg.Limit,
		idle:    cfg.Window,
	}
}

func (l *localLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for k, c := range l.clients {
		if now.Sub(c.seen) > l.idle {
			delete(l.clients, k)
		}
	}

	c, ok := l.clients[key]
	if !ok {
		c = &localClient{lim: rate.NewLimiter(l.r, l.burst)}
		l.clients[key] = c
	}
	c.seen = now
	return c.lim.Allow()
}

// RateLimiter creates a rate limiting middleware keyed by path and client IP.
// It counts in Redis when a client is connected and in process otherwise.
func RateLimiter(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limit <= 0 {
		cfg.Limit = defaultRateLimit
	}
	if cfg.Window <= 0 {
		cfg.Window = defaultRateWindow
	}
	local := newLocalLimiter(cfg)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		endpoint := c.Request.URL.Path
		key := rateLimitKey(endpoint, clientIP)

		allowed, err := checkRateLimit(c.Request.Context(), key, cfg.Limit, cfg.Window)
		if errors.Is(err, errNoRedis) {
			allowed, err = local.allow(key), nil
		}
		if err != nil {
			// Redis failed mid-flight; fall back to the local limiter
			log.Warn().Err(err).Str("key", key).Msg("rate limit check failed")
			allowed = local.allow(key)
		}

		if !allowed {
			util.LogRateLimitExceeded(clientIP, endpoint)
			util.CallTooManyRequests(c, util.APIErrorParams{
				Msg: "Too many requests. Please try again later.",
				Err: fmt.Errorf("rate limit exceeded"),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

var errNoRedis = errors.New("redis not available")

func rateLimitKey(endpoint, clientIP string) string {
	return fmt.Sprintf("ratelimit:%s:%s", endpoint, clientIP)
}

// checkRateLimit counts a request in a fixed Redis window.
// Returns true if allowed, false if rate limit exceeded
func checkRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return false, errNoRedis
	}

	count, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if count == 1 {
		// the first hit opens the window
		if err := rdb.Expire(ctx, key, window).Err(); err != nil && err != redis.Nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return count <= int64(limit), nil
}

// ResetRateLimit resets the rate limit for a client (useful for testing or admin operations)
func ResetRateLimit(ctx context.Context, clientIP, endpoint string) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return errNoRedis
	}
	return rdb.Del(ctx, rateLimitKey(endpoint, clientIP)).Err()
}
