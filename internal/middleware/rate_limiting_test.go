package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/2beens/liftmates/internal/telemetry/metrics"

	"github.com/go-redis/redis_rate/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rateLimiterMock struct {
	allowed int
}

func (m *rateLimiterMock) Allow(_ context.Context, _ string, _ redis_rate.Limit) (*redis_rate.Result, error) {
	return &redis_rate.Result{
		Allowed:    m.allowed,
		RetryAfter: 30 * time.Second,
	}, nil
}

func TestRateLimit(t *testing.T) {
	metricsManager := metrics.NewTestManager()
	limiter := &rateLimiterMock{allowed: 1}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RateLimit(limiter, "login", 15, metricsManager)(next)

	req, err := http.NewRequest("POST", "/a/login", nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	limiter.allowed = 0
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Contains(t, rr.Body.String(), "retry after")
	assert.Equal(t, float64(1), testCounterValue(t, metricsManager.CounterRateLimitedRequests))
}
