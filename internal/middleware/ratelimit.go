package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter increments the request count for key inside a fixed window and
// returns the new count together with the time left in the window.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type bucket struct {
	count int64
	until time.Time
}

// MemoryCounter keeps fixed windows per key in process memory.
type MemoryCounter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{buckets: make(map[string]*bucket), now: time.Now}
}

func (m *MemoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	b, ok := m.buckets[key]
	if !ok || now.After(b.until) {
		b = &bucket{until: now.Add(window)}
		m.buckets[key] = b
	}
	b.count++
	return b.count, b.until.Sub(now), nil
}

// RedisCounter shares windows across API replicas.
type RedisCounter struct {
	client *redis.Client
	prefix string
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client, prefix: "reelgen:ratelimit:"}
}

func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	k := c.prefix + key
	n, err := c.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, 0, err
	}
	if n == 1 {
		if err := c.client.Expire(ctx, k, window).Err(); err != nil {
			return n, window, err
		}
		return n, window, nil
	}
	ttl, err := c.client.TTL(ctx, k).Result()
	if err != nil || ttl < 0 {
		ttl = window
	}
	return n, ttl, nil
}

// RateLimit allows limit requests per client IP and window. Counter errors
// fail open so a Redis outage does not take the API down.
func RateLimit(counter Counter, limit int, per time.Duration) func(http.Handler) http.Handler {
	if counter == nil {
		counter = NewMemoryCounter()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			count, remaining, err := counter.Incr(r.Context(), clientIPForRateLimit(r), per)
			if err == nil && count > int64(limit) {
				w.Header().Set("Retry-After", strconv.Itoa(int(remaining.Round(time.Second).Seconds())))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":{"code":"rate_limited","message":"too many requests"}}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIPForRateLimit(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip == "" {
				continue
			}
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		if net.ParseIP(host) != nil {
			return host
		}
	} else if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}

	return r.RemoteAddr
}
