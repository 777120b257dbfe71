package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/endpointkit/errors"
)

const rateWindow = time.Minute

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	// RequestsPerMinute is the maximum number of requests allowed per minute per key.
	RequestsPerMinute int
	// KeyFunc extracts the rate limit key from a request. Defaults to client IP.
	KeyFunc func(*gin.Context) string
}

// RateLimit applies a per-key sliding window. Requests over the limit are
// refused with RATE_LIMITED through the error pipeline.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}

	w := &slidingWindow{hits: make(map[string][]time.Time), limit: cfg.RequestsPerMinute}

	return func(c *gin.Context) {
		if !w.allow(cfg.KeyFunc(c), time.Now()) {
			_ = c.Error(apperrors.RateLimited(cfg.RequestsPerMinute))
			c.Abort()
			return
		}
		c.Next()
	}
}

// slidingWindow counts hits per key over the last rateWindow. Stale keys are
// pruned on access, so no background goroutine is needed.
type slidingWindow struct {
	mu        sync.Mutex
	hits      map[string][]time.Time
	limit     int
	lastPrune time.Time
}

func (w *slidingWindow) allow(key string, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := now.Add(-rateWindow)
	if now.Sub(w.lastPrune) > rateWindow {
		for k, times := range w.hits {
			if len(times) == 0 || !times[len(times)-1].After(cutoff) {
				delete(w.hits, k)
			}
		}
		w.lastPrune = now
	}

	recent := w.hits[key]
	i := 0
	for i < len(recent) && !recent[i].After(cutoff) {
		i++
	}
	recent = recent[i:]

	if len(recent) >= w.limit {
		w.hits[key] = recent
		return false
	}
	w.hits[key] = append(recent, now)
	return true
}
