package server

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/swiftchat-web/internal/errors"
	"github.com/jrsteele09/swiftchat-web/internal/metrics"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// RateLimiterConfig limits auth form submissions per browser context
type RateLimiterConfig struct {
	PerMinute       int
	CleanupInterval time.Duration
}

type browserLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter keeps one token bucket per browser context. Entries idle for
// twice the cleanup interval are dropped by a background loop.
type RateLimiter struct {
	perMin  int
	rate    rate.Limit
	burst   int
	cleanup time.Duration
	metrics metrics.Recorder

	mu       sync.RWMutex
	limiters map[string]*browserLimiter

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewRateLimiter(cfg RateLimiterConfig, recorder metrics.Recorder) *RateLimiter {
	if cfg.PerMinute <= 0 {
		cfg.PerMinute = 10
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	if recorder == nil {
		recorder = metrics.Noop{}
	}

	rl := &RateLimiter{
		perMin:   cfg.PerMinute,
		rate:     rate.Limit(float64(cfg.PerMinute) / 60.0),
		burst:    cfg.PerMinute,
		cleanup:  cfg.CleanupInterval,
		metrics:  recorder,
		limiters: make(map[string]*browserLimiter),
		stopCh:   make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Allow reports whether key may submit now
func (rl *RateLimiter) Allow(key string) bool {
	return rl.limiterFor(key).Allow()
}

func (rl *RateLimiter) Len() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.limiters)
}

// Middleware rejects submissions over the limit with 429. Buckets are keyed by
// remote address, since a client can present a new browser cookie every time.
// It runs ahead of the browser context middleware so rejected requests never
// create a session.
func (rl *RateLimiter) Middleware(route string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := remoteHost(r)

			if !rl.Allow(key) {
				rl.metrics.RecordRateLimited(route)
				log.Warn().Str("client", key).Str("route", route).Msg("Rate limit exceeded")
				rl.writeLimited(w)
				return
			}
			next(w, r)
		}
	}
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.RLock()
	bl, exists := rl.limiters[key]
	rl.mu.RUnlock()

	if exists {
		rl.mu.Lock()
		bl.lastAccess = now
		rl.mu.Unlock()
		return bl.limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if bl, exists := rl.limiters[key]; exists {
		bl.lastAccess = now
		return bl.limiter
	}

	bl = &browserLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst), lastAccess: now}
	rl.limiters[key] = bl
	return bl.limiter
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RateLimiter) evictIdle(now time.Time) int {
	ttl := rl.cleanup * 2
	removed := 0

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, bl := range rl.limiters {
		if now.Sub(bl.lastAccess) > ttl {
			delete(rl.limiters, key)
			removed++
		}
	}
	return removed
}

// writeLimited sets Retry-After to the time until one more token is available
func (rl *RateLimiter) writeLimited(w http.ResponseWriter) {
	retryAfter := (60 + rl.perMin - 1) / rl.perMin
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	http.Error(w, apperrors.ErrRateLimitExceeded.Error(), http.StatusTooManyRequests)
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
