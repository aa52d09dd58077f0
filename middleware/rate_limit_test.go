package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/vnkhanh/checkout-survey/metrics"
)

func TestIPRateLimiterPerIP(t *testing.T) {
	rl := NewIPRateLimiter(60, 2, time.Minute)
	defer rl.Stop()

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"))
	assert.Equal(t, 2, rl.Len())
}

func TestIPRateLimiterSweepsIdleClients(t *testing.T) {
	rl := NewIPRateLimiter(60, 1, 5*time.Minute)
	defer rl.Stop()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("1.1.1.1")
	now = now.Add(3 * time.Minute)
	rl.Allow("2.2.2.2")
	now = now.Add(3 * time.Minute)
	rl.sweep()

	assert.Equal(t, 1, rl.Len())
}

func TestRateLimitByIPRejectsAndCounts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewIPRateLimiter(1, 1, time.Minute)
	defer rl.Stop()
	m := metrics.New()

	r := gin.New()
	r.GET("/api/proxy/surveys", RateLimitByIP(rl, m), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/proxy/surveys", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimited.WithLabelValues("/api/proxy/surveys")))
}
