package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/craftfolio/craftfolio/internal/ctxkeys"
)

// Limiter decides whether one more request for key fits the window.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// RateLimiter tracks request counts per key in memory.
type RateLimiter struct {
	mu       sync.RWMutex
	requests map[string][]time.Time
	limit    int           // Max requests allowed
	window   time.Duration // Time window for rate limiting
	now      func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}

	go rl.cleanupLoop()

	return rl
}

func (rl *RateLimiter) Allow(_ context.Context, key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)

	validRequests := []time.Time{}
	for _, reqTime := range rl.requests[key] {
		if reqTime.After(cutoff) {
			validRequests = append(validRequests, reqTime)
		}
	}

	if len(validRequests) >= rl.limit {
		rl.requests[key] = validRequests
		return false
	}

	rl.requests[key] = append(validRequests, now)
	return true
}

// cleanupLoop periodically removes old entries to prevent memory leak
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.cleanup()
	}
}

// cleanup removes keys with no recent requests
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.window * 2)

	for key, requests := range rl.requests {
		if len(requests) == 0 || !requests[len(requests)-1].After(cutoff) {
			delete(rl.requests, key)
		}
	}
}

// RedisLimiter counts requests in fixed windows shared by every
// instance. While Redis is unreachable it falls back to memory.
type RedisLimiter struct {
	client   *redis.Client
	limit    int
	window   time.Duration
	prefix   string
	fallback *RateLimiter

	warnedUnavailable atomic.Bool
}

// NewLimiter returns a Redis-backed limiter when redisURL is set and
// answers a ping, otherwise an in-memory one.
func NewLimiter(ctx context.Context, redisURL string, limit int, window time.Duration) Limiter {
	memory := NewRateLimiter(limit, window)
	if redisURL == "" {
		return memory
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		slog.Warn("invalid REDIS_URL, rate limiting in memory", "error", err)
		return memory
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	err = client.Ping(pingCtx).Err()
	if err != nil {
		slog.Warn("redis unavailable, rate limiting in memory", "error", err)
		_ = client.Close()
		return memory
	}

	slog.Info("rate limiting with redis", "addr", opts.Addr)
	return &RedisLimiter{
		client:   client,
		limit:    limit,
		window:   window,
		prefix:   "craftfolio:ratelimit",
		fallback: memory,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	bucket := time.Now().UnixNano() / int64(l.window)
	windowKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, bucket)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, l.window)
	_, err := pipe.Exec(ctx)
	if err != nil {
		if l.warnedUnavailable.CompareAndSwap(false, true) {
			slog.Warn("redis rate limit failed, using memory", "error", err)
		}
		return l.fallback.Allow(ctx, key)
	}
	l.warnedUnavailable.Store(false)

	return incr.Val() <= int64(l.limit)
}

func (l *RedisLimiter) Close() error {
	return l.client.Close()
}

// RateLimitAuth limits credential endpoints per client IP.
func RateLimitAuth(limiter Limiter) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ip := getClientIP(r)

			if !limiter.Allow(r.Context(), "auth:"+ip) {
				slog.Warn("rate limit exceeded",
					"ip", ip,
					"path", r.URL.Path,
				)
				http.Error(w, "Too many requests. Please try again later.", http.StatusTooManyRequests)
				return
			}

			next(w, r)
		}
	}
}

// getClientIP returns the peer address. Behind a trusted proxy it is the
// right-most X-Forwarded-For hop, the one the proxy itself appended;
// hops to its left are client-supplied.
func getClientIP(r *http.Request) string {
	if cfg := ctxkeys.Config(r.Context()); cfg != nil && cfg.TrustProxy {
		hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
		if ip := strings.TrimSpace(hops[len(hops)-1]); ip != "" {
			return ip
		}
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
