package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"recharge-mcp-go/internal/monitoring"
)

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// ttlLimiterCache holds per-key limiters and sweeps idle ones
// opportunistically on insert.
type ttlLimiterCache struct {
	mu        sync.Mutex
	items     map[string]*limiterEntry
	ttl       time.Duration
	lastSweep time.Time
}

func newTTLLimiterCache(ttl time.Duration) *ttlLimiterCache {
	return &ttlLimiterCache{items: make(map[string]*limiterEntry), ttl: ttl}
}

func (c *ttlLimiterCache) get(key string, makeFn func() *rate.Limiter) *rate.Limiter {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.items[key]; ok {
		e.lastSeen = now
		return e.lim
	}
	lim := makeFn()
	c.items[key] = &limiterEntry{lim: lim, lastSeen: now}
	monitoring.RateLimitKeysGauge.Set(float64(len(c.items)))
	if c.lastSweep.IsZero() || now.Sub(c.lastSweep) > 2*time.Minute {
		c.sweepLocked(now)
		c.lastSweep = now
	}
	return lim
}

func (c *ttlLimiterCache) sweepLocked(now time.Time) {
	for k, e := range c.items {
		if now.Sub(e.lastSeen) > c.ttl {
			delete(c.items, k)
		}
	}
	monitoring.RateLimitKeysGauge.Set(float64(len(c.items)))
	monitoring.RateLimitSweepsTotal.Inc()
}

// RateLimiter limits requests per client, keyed by bearer token when
// one is presented and by client IP otherwise. A global limiter at 5x
// the per-key rate caps aggregate throughput.
func RateLimiter(rps, burst int) gin.HandlerFunc {
	if rps <= 0 {
		rps = 10
	}
	if burst <= 0 {
		burst = 20
	}
	cache := newTTLLimiterCache(15 * time.Minute)
	global := rate.NewLimiter(rate.Limit(rps*5), burst*5)

	return func(c *gin.Context) {
		if !global.Allow() {
			tooManyRequests(c, "Global rate limit exceeded")
			return
		}
		key := clientKey(c)
		lim := cache.get(key, func() *rate.Limiter {
			return rate.NewLimiter(rate.Limit(rps), burst)
		})
		if !lim.Allow() {
			tooManyRequests(c, "Rate limit exceeded")
			return
		}
		c.Next()
	}
}

func clientKey(c *gin.Context) string {
	auth := strings.TrimSpace(c.GetHeader("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		if tok := strings.TrimSpace(auth[7:]); tok != "" {
			return tok
		}
	}
	return c.ClientIP()
}

func tooManyRequests(c *gin.Context, msg string) {
	c.JSON(http.StatusTooManyRequests, gin.H{
		"error": gin.H{"message": msg, "type": "rate_limit_error"},
	})
	c.Abort()
}
