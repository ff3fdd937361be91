package handlers

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"gitlab.com/fcv-judge.net/internal/handlers/response"
)

const (
	cleanupInterval = time.Minute
	visitorTimeout  = 3 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client.
type RateLimiter struct {
	mu       sync.RWMutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

// NewRateLimiter allows rps requests per second per client with bursts up to burst.
func NewRateLimiter(rps, burst float64) *RateLimiter {
	b := int(burst)
	if b < 1 {
		b = 1
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(rps),
		burst:    b,
		now:      time.Now,
	}
}

func (rl *RateLimiter) getVisitor(key string) *visitor {
	rl.mu.RLock()
	v, exists := rl.visitors[key]
	rl.mu.RUnlock()
	if exists {
		return v
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if v, exists = rl.visitors[key]; !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	return v
}

// Allow consumes one token for key if available.
func (rl *RateLimiter) Allow(key string) bool {
	v := rl.getVisitor(key)
	now := rl.now()

	v.mu.Lock()
	v.lastSeen = now
	v.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// Run drops idle visitors until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evictIdle()
		}
	}
}

func (rl *RateLimiter) evictIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, v := range rl.visitors {
		v.mu.Lock()
		if rl.now().Sub(v.lastSeen) > visitorTimeout {
			delete(rl.visitors, key)
		}
		v.mu.Unlock()
	}
}

// Middleware rejects requests beyond the client's budget with 429.
func (rl *RateLimiter) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientKey(r)) {
			response.WriteJSON(w, http.StatusTooManyRequests, response.NewFailure(response.TypeRateLimited, "Too Many Requests"))
			return
		}
		next(w, r)
	}
}

// clientKey identifies the caller by authenticated subject, then forwarded address,
// then remote address.
func clientKey(r *http.Request) string {
	if caller, ok := CallerFromContext(r.Context()); ok {
		return "caller:" + caller
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
