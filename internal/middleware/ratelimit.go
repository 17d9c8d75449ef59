// Package middleware contains Gin middleware functions.
// Middleware runs before the route handler and either calls c.Next() to
// proceed or c.Abort() to stop the chain.
package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit returns per-client-IP rate limiting middleware using token
// buckets: each IP gets a bucket that fills at `rps` tokens/sec up to `burst`
// tokens, and each request consumes one. An empty bucket means 429.
//
// The API is unauthenticated, so the client IP is the only identity we have
// to key buckets on.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		limiter, exists := limiters[ip]
		if !exists {
			limiter = rate.NewLimiter(rate.Limit(rps), burst)
			limiters[ip] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
