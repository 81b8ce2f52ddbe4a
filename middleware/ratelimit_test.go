package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ariebrainware/hospital-booking/config"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRateLimitedRouter(cfg RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", RateLimiter(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func hitLogin(r http.Handler, ip string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = ip + ":1234"
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiter_LocalFallback(t *testing.T) {
	config.SetRedisClientForTest(nil)
	r := newRateLimitedRouter(RateLimitConfig{Limit: 3, Window: time.Hour})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hitLogin(r, "192.168.1.1"), "request %d", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, hitLogin(r, "192.168.1.1"))

	// other clients have their own budget
	assert.Equal(t, http.StatusOK, hitLogin(r, "192.168.1.2"))
}

func TestRateLimiter_DefaultConfig(t *testing.T) {
	config.SetRedisClientForTest(nil)
	r := newRateLimitedRouter(RateLimitConfig{})

	for i := 0; i < defaultRateLimit; i++ {
		assert.Equal(t, http.StatusOK, hitLogin(r, "10.0.0.9"))
	}
	assert.Equal(t, http.StatusTooManyRequests, hitLogin(r, "10.0.0.9"))
}

func TestRateLimiter_Redis(t *testing.T) {
	db, mock := redismock.NewClientMock()
	config.SetRedisClientForTest(db)
	t.Cleanup(func() { config.SetRedisClientForTest(nil) })

	window := 15 * time.Minute
	key := "ratelimit:/login:192.168.1.1"
	r := newRateLimitedRouter(RateLimitConfig{Limit: 2, Window: window})

	mock.ExpectIncr(key).SetVal(1)
	mock.ExpectExpire(key, window).SetVal(true)
	assert.Equal(t, http.StatusOK, hitLogin(r, "192.168.1.1"))

	mock.ExpectIncr(key).SetVal(2)
	assert.Equal(t, http.StatusOK, hitLogin(r, "192.168.1.1"))

	mock.ExpectIncr(key).SetVal(3)
	assert.Equal(t, http.StatusTooManyRequests, hitLogin(r, "192.168.1.1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_RedisErrorFallsBackToLocal(t *testing.T) {
	db, mock := redismock.NewClientMock()
	config.SetRedisClientForTest(db)
	t.Cleanup(func() { config.SetRedisClientForTest(nil) })

	key := "ratelimit:/login:192.168.1.1"
	r := newRateLimitedRouter(RateLimitConfig{Limit: 1, Window: time.Hour})

	mock.ExpectIncr(key).SetErr(errors.New("connection refused"))
	assert.Equal(t, http.StatusOK, hitLogin(r, "192.168.1.1"))

	mock.ExpectIncr(key).SetErr(errors.New("connection refused"))
	assert.Equal(t, http.StatusTooManyRequests, hitLogin(r, "192.168.1.1"))
}

func TestResetRateLimit(t *testing.T) {
	config.SetRedisClientForTest(nil)
	assert.Error(t, ResetRateLimit(context.Background(), "192.168.1.1", "/login"))

	db, mock := redismock.NewClientMock()
	config.SetRedisClientForTest(db)
	t.Cleanup(func() { config.SetRedisClientForTest(nil) })

	mock.ExpectDel("ratelimit:/login:192.168.1.1").SetVal(1)
	require.NoError(t, ResetRateLimit(context.Background(), "192.168.1.1", "/login"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
