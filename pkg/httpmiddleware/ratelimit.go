package httpmiddleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures per-client token buckets. Max requests may burst
// at once; the bucket refills at Max per Window.
type RateLimitConfig struct {
	Max    int
	Window time.Duration
	// KeyFunc identifies the client. Defaults to the client IP.
	KeyFunc func(*http.Request) string
}

type clientLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

type limiterSet struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	clients map[string]*clientLimiter
}

func newLimiterSet(cfg RateLimitConfig) *limiterSet {
	return &limiterSet{
		limit:   rate.Every(cfg.Window / time.Duration(max(cfg.Max, 1))),
		burst:   max(cfg.Max, 1),
		clients: make(map[string]*clientLimiter),
	}
}

func (s *limiterSet) get(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[key]
	if !ok {
		c = &clientLimiter{lim: rate.NewLimiter(s.limit, s.burst)}
		s.clients[key] = c
	}
	c.seen = now
	return c.lim
}

// evict drops clients not seen since before.
func (s *limiterSet) evict(before time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, c := range s.clients {
		if c.seen.Before(before) {
			delete(s.clients, key)
		}
	}
}

func (s *limiterSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// RateLimit rejects clients that exhaust their bucket with 429. Idle clients
// are evicted every two windows until ctx is done.
func RateLimit(ctx context.Context, cfg RateLimitConfig) Middleware {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = ClientIP
	}
	set := newLimiterSet(cfg)
	idle := 2 * cfg.Window
	if idle > 0 {
		go func() {
			ticker := time.NewTicker(idle)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case now := <-ticker.C:
					set.evict(now.Add(-idle))
				}
			}
		}()
	}
	limit := strconv.Itoa(set.burst)
	refill := cfg.Window / time.Duration(set.burst)
	retry := strconv.Itoa(int(math.Ceil(refill.Seconds())))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()
			lim := set.get(cfg.KeyFunc(r), now)
			ok := lim.AllowN(now, 1)

			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(int(lim.TokensAt(now)), 0)))
			if !ok {
				w.Header().Set("Retry-After", retry)
				WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the first X-Forwarded-For hop, X-Real-IP, or the remote
// host, in that order.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
