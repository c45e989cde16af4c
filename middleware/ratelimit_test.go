package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/veterinary-salons/backend/config"
)

func newRateLimitedRouter(cfg RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/signin", RateLimiter(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})
	return r
}

func doSignin(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/signin", nil)
	req.RemoteAddr = "192.168.1.1:1234"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_WithoutRedis(t *testing.T) {
	config.SetRedisClientForTesting(nil)
	r := newRateLimitedRouter(RateLimitConfig{Limit: 5, Window: 15 * time.Minute})

	// without Redis every request passes
	for i := 0; i < 10; i++ {
		w := doSignin(r)
		assert.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}
}

func TestRateLimiter_WithinLimit(t *testing.T) {
	mock := setupRedisMock(t)
	key := rateLimitKey("/auth/signin", "192.168.1.1")
	mock.ExpectIncr(key).SetVal(1)
	mock.ExpectExpireNX(key, time.Minute).SetVal(true)

	r := newRateLimitedRouter(RateLimitConfig{Limit: 2, Window: time.Minute})
	w := doSignin(r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_Exceeded(t *testing.T) {
	mock := setupRedisMock(t)
	key := rateLimitKey("/auth/signin", "192.168.1.1")
	mock.ExpectIncr(key).SetVal(3)
	mock.ExpectExpireNX(key, time.Minute).SetVal(false)

	r := newRateLimitedRouter(RateLimitConfig{Limit: 2, Window: time.Minute})
	w := doSignin(r)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many requests")
}

func TestRateLimiter_RedisErrorLetsRequestThrough(t *testing.T) {
	mock := setupRedisMock(t)
	key := rateLimitKey("/auth/signin", "192.168.1.1")
	mock.ExpectIncr(key).SetErr(errors.New("connection refused"))

	r := newRateLimitedRouter(RateLimitConfig{Limit: 2, Window: time.Minute})
	w := doSignin(r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter_DefaultConfig(t *testing.T) {
	mock := setupRedisMock(t)
	key := rateLimitKey("/auth/signin", "192.168.1.1")
	mock.ExpectIncr(key).SetVal(defaultRateLimit + 1)
	mock.ExpectExpireNX(key, defaultRateWindow).SetVal(false)

	r := newRateLimitedRouter(RateLimitConfig{})
	w := doSignin(r)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestResetRateLimit(t *testing.T) {
	config.SetRedisClientForTesting(nil)
	assert.Error(t, ResetRateLimit(context.Background(), "192.168.1.1", "/auth/signin"))

	mock := setupRedisMock(t)
	mock.ExpectDel(rateLimitKey("/auth/signin", "192.168.1.1")).SetVal(1)
	assert.NoError(t, ResetRateLimit(context.Background(), "192.168.1.1", "/auth/signin"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
