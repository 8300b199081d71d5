package http

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Saba3939/mood-harbor/internal/metrics"
	"github.com/Saba3939/mood-harbor/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID tags every request for log and event correlation.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("X-Request-ID", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.InFlight.Inc()
		c.Next()
		metrics.InFlight.Dec()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.ReqDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// AuthJWT validates the HS256 access token issued by the auth service and
// exposes the caller's uid to handlers.
func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(strings.ToLower(h), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer"})
			return
		}
		tok := strings.TrimSpace(h[len("Bearer "):])
		claims, err := security.ParseAccess(secret, tok)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		uid := claims.UID
		if uid == "" {
			uid = claims.Subject
		}
		if uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no uid"})
			return
		}

		c.Set("uid", uid)
		c.Set("email", claims.Email)
		c.Next()
	}
}

type tokenBucket struct {
	tokens  int
	updated time.Time
}

type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket
	rate    int
	window  time.Duration
}

func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return &RateLimiter{buckets: make(map[string]*tokenBucket), rate: rate, window: window}
}

func (rl *RateLimiter) Allow(key string) bool {
	if rl.rate <= 0 {
		return true
	}
	now := time.Now()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	b, ok := rl.buckets[key]
	if !ok || now.Sub(b.updated) > rl.window {
		rl.buckets[key] = &tokenBucket{tokens: 1, updated: now}
		return true
	}
	if b.tokens < rl.rate {
		b.tokens++
		b.updated = now
		return true
	}
	return false
}

// RateLimitShares throttles the share write path per authenticated user.
func RateLimitShares(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString("uid")
		if key == "" {
			key = c.ClientIP()
		}
		if !rl.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

func intQuery(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}
