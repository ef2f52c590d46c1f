package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/davenowercise/nowercise-app-sub004/internal/shared/server/respond"
)

// Route classes used by MethodClass.
const (
	RateClassRead  = "READ"
	RateClassWrite = "WRITE"
)

// Limit is a token bucket refilled at Rate tokens per second up to Burst.
type Limit struct {
	Rate  float64
	Burst int
}

// PerMinute allows n requests a minute with a burst of n. Zero disables.
func PerMinute(n int) Limit {
	if n <= 0 {
		return Limit{}
	}
	return Limit{Rate: float64(n) / 60, Burst: n}
}

// RateLimitConfig maps route classes to limits. A class without a limit
// passes through.
type RateLimitConfig struct {
	Limits  map[string]Limit
	ClassOf func(*gin.Context) string
	Limiter *RateLimiter
}

// MethodClass puts mutating requests in RateClassWrite and everything else
// in RateClassRead.
func MethodClass(c *gin.Context) string {
	switch c.Request.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return RateClassWrite
	}
	return RateClassRead
}

// RateLimiter keeps one bucket per principal and class.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rateBucket
	now     func() time.Time
}

type rateBucket struct {
	tokens float64
	last   time.Time
}

func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{buckets: make(map[string]*rateBucket), now: now}
}

// RateLimit rejects requests over the class limit with 429 and Retry-After.
// Requests are keyed by user id, or by client IP before authentication.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(nil)
	}
	if cfg.ClassOf == nil {
		cfg.ClassOf = MethodClass
	}
	return func(c *gin.Context) {
		class := cfg.ClassOf(c)
		limit, ok := cfg.Limits[class]
		if !ok {
			c.Next()
			return
		}
		principal := strings.TrimSpace(UserIDFromContext(c))
		if principal == "" {
			principal = c.ClientIP()
		}
		allowed, wait := cfg.Limiter.Allow(principal+"|"+class, limit)
		if allowed {
			c.Next()
			return
		}
		waitMs := int(wait / time.Millisecond)
		if waitMs <= 0 {
			waitMs = 1000
		}
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(float64(waitMs)/1000))))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "too many requests", gin.H{"retryAfterMs": waitMs})
		c.Abort()
	}
}

// Allow takes one token from key's bucket. A disabled limit always allows.
func (l *RateLimiter) Allow(key string, limit Limit) (bool, time.Duration) {
	if l == nil || limit.Rate <= 0 || limit.Burst <= 0 {
		return true, 0
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &rateBucket{tokens: float64(limit.Burst), last: now}
		l.buckets[key] = b
	}
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = math.Min(float64(limit.Burst), b.tokens+elapsed*limit.Rate)
		b.last = now
	}
	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	wait := (1 - b.tokens) / limit.Rate
	return false, time.Duration(math.Ceil(wait*1000)) * time.Millisecond
}
