package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ClientLimiter keeps a token-bucket limiter per client IP. Every vendor
// call behind this API costs quota, so inbound traffic is capped before it
// reaches the clients.
type ClientLimiter struct {
	mu    sync.Mutex
	m     map[string]*rate.Limiter
	r     rate.Limit
	burst int
}

// NewClientLimiter allows reqPerWindow requests per window, with bursts up
// to the same size.
func NewClientLimiter(reqPerWindow int, window time.Duration) *ClientLimiter {
	return &ClientLimiter{
		m:     make(map[string]*rate.Limiter),
		r:     rate.Limit(float64(reqPerWindow) / window.Seconds()),
		burst: reqPerWindow,
	}
}

func (cl *ClientLimiter) limiterFor(clientIP string) *rate.Limiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if lim, ok := cl.m[clientIP]; ok {
		return lim
	}
	lim := rate.NewLimiter(cl.r, cl.burst)
	cl.m[clientIP] = lim
	return lim
}

// Allow reports whether the client may proceed right now.
func (cl *ClientLimiter) Allow(clientIP string) bool {
	return cl.limiterFor(clientIP).Allow()
}

// RateLimit middleware limits requests per client IP
func RateLimit(reqPerWindow int, window time.Duration) gin.HandlerFunc {
	limiter := NewClientLimiter(reqPerWindow, window)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		if !limiter.Allow(clientIP) {
			slog.Warn("rate limit exceeded",
				"client_ip", clientIP,
				"request_id", GetRequestID(c),
			)

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
