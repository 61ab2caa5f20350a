package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/vocoweb/gateway/internal/metrics"
)

// IPLimiter decides whether a request from the given IP may proceed.
// Implementations must fail open: on internal errors, allow the request.
type IPLimiter interface {
	Allow(ctx context.Context, ip string) (allowed bool, retryAfter time.Duration)
}

// RateLimitConfig holds configuration for the public rate limit middleware.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Limiter IPLimiter
	Metrics metrics.Recorder
	Enabled bool
}

// RateLimitPublic returns middleware that rate limits requests per client IP.
// Applied to public write endpoints (waitlist signups) to match the
// backend's own abuse controls without burning a backend call first.
func RateLimitPublic(cfg RateLimitConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled || cfg.Limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			ip := ClientIP(r)

			allowed, retryAfter := cfg.Limiter.Allow(r.Context(), ip)
			if !allowed {
				cfg.Logger.Warn("rate limit exceeded",
					slog.String("ip", ip),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int64("retry_after_seconds", int64(retryAfter.Seconds())),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				recorder.IncRateLimited(r.URL.Path)

				if retryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"Too many requests. Please try again later."}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LocalIPLimiter is an in-process per-IP token bucket used when Redis is
// not configured. Limits then only hold within a single gateway process.
type LocalIPLimiter struct {
	rps   rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*localEntry

	stopCh chan struct{}
}

type localEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewLocalIPLimiter creates a LocalIPLimiter and starts a background
// cleanup of idle entries.
func NewLocalIPLimiter(rps, burst int) *LocalIPLimiter {
	l := &LocalIPLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		limiters: make(map[string]*localEntry),
		stopCh:   make(chan struct{}),
	}

	go l.cleanupLoop()

	return l
}

// Allow implements IPLimiter.
func (l *LocalIPLimiter) Allow(ctx context.Context, ip string) (bool, time.Duration) {
	l.mu.Lock()
	entry, ok := l.limiters[ip]
	if !ok {
		entry = &localEntry{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastAccess = time.Now()
	l.mu.Unlock()

	if entry.limiter.Allow() {
		return true, 0
	}

	// Time until one token refills.
	return false, time.Duration(float64(time.Second) / float64(l.rps))
}

// Stop terminates the background cleanup goroutine.
func (l *LocalIPLimiter) Stop() {
	close(l.stopCh)
}

func (l *LocalIPLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case now := <-ticker.C:
			l.mu.Lock()
			for ip, entry := range l.limiters {
				if now.Sub(entry.lastAccess) > 10*time.Minute {
					delete(l.limiters, ip)
				}
			}
			l.mu.Unlock()
		}
	}
}

// ClientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers for proxied requests.
func ClientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		// Take the first IP (client IP)
		for i := range xff {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	return r.RemoteAddr
}
