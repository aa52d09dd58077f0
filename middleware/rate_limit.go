package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/vnkhanh/checkout-survey/metrics"
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter giữ một token bucket cho mỗi IP gọi các route public.
// IP im lặng quá idleTTL sẽ bị dọn.
type IPRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client

	every   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	stop chan struct{}
	once sync.Once
}

// NewIPRateLimiter: perMin request mỗi phút, cho phép dồn tối đa burst.
func NewIPRateLimiter(perMin, burst int, idleTTL time.Duration) *IPRateLimiter {
	rl := &IPRateLimiter{
		clients: make(map[string]*client),
		every:   rate.Limit(float64(perMin) / 60.0),
		burst:   burst,
		idleTTL: idleTTL,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go rl.sweepLoop(time.Minute)
	return rl
}

// Stop dừng goroutine dọn dẹp; gọi nhiều lần vẫn an toàn.
func (rl *IPRateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// Allow tiêu một token của ip.
func (rl *IPRateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	cl, ok := rl.clients[ip]
	if !ok {
		cl = &client{limiter: rate.NewLimiter(rl.every, rl.burst)}
		rl.clients[ip] = cl
	}
	cl.lastSeen = rl.now()
	lim := cl.limiter
	rl.mu.Unlock()

	return lim.Allow()
}

// Len trả số IP đang được theo dõi.
func (rl *IPRateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

func (rl *IPRateLimiter) sweep() {
	cutoff := rl.now().Add(-rl.idleTTL)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, cl := range rl.clients {
		if cl.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *IPRateLimiter) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

// RateLimitByIP gắn cho nhóm /api/proxy. m có thể nil.
func RateLimitByIP(rl *IPRateLimiter, m *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		// ClientIP chỉ tin X-Forwarded-For khi đã cấu hình TrustedProxies
		if !rl.Allow(c.ClientIP()) {
			m.RecordRateLimited(c.FullPath())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "Too Many Requests",
				"hint":    "Vui lòng thử lại sau ít phút.",
			})
			return
		}
		c.Next()
	}
}
