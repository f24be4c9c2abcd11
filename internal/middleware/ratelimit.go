package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/scid-pd-engine/internal/domain"
)

const (
	maxTrackedClients = 10000
	clientIdleTTL     = 15 * time.Minute
)

// RateLimiter holds one token bucket per client IP. Buckets of idle clients expire.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	clients *expirable.LRU[string, *rate.Limiter]
}

// NewRateLimiter allows rps requests per second per client with the given burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		clients: expirable.NewLRU[string, *rate.Limiter](maxTrackedClients, nil, clientIdleTTL),
	}
}

// Allow reports whether the client may make a request now.
func (l *RateLimiter) Allow(client string) bool {
	limiter, ok := l.clients.Get(client)
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
	}
	// re-adding refreshes the idle expiry
	l.clients.Add(client, limiter)
	return limiter.Allow()
}

// RateLimit rejects requests beyond the per-client budget with 429. A non-positive rate
// disables limiting.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 || burst <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := NewRateLimiter(rps, burst)
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, domain.NewAPIError(
				domain.CodeRateLimit,
				"rate limit exceeded",
				nil,
				c.GetString(CorrelationIDKey),
			))
			return
		}
		c.Next()
	}
}
