package main

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// moveLimiter keeps one token bucket per client address.
type moveLimiter struct {
	mu       sync.Mutex
	limit    func() (rate.Limit, int)
	visitors map[string]*visitor
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newMoveLimiter(limit func() (rate.Limit, int)) *moveLimiter {
	return &moveLimiter{limit: limit, visitors: make(map[string]*visitor)}
}

func configLimit() (rate.Limit, int) {
	cfg := GetConfig()
	if cfg.MoveRatePerSec <= 0 {
		return rate.Inf, cfg.MoveBurst
	}
	return rate.Limit(cfg.MoveRatePerSec), cfg.MoveBurst
}

func (m *moveLimiter) Allow(key string) bool {
	limit, burst := m.limit()
	if limit == rate.Inf {
		return true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(limit, burst)}
		m.visitors[key] = v
	}
	if v.limiter.Limit() != limit || v.limiter.Burst() != burst {
		v.limiter.SetLimit(limit)
		v.limiter.SetBurst(burst)
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

// Sweep drops buckets idle for longer than ttl.
func (m *moveLimiter) Sweep(ttl time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for key, v := range m.visitors {
		if time.Since(v.lastSeen) > ttl {
			delete(m.visitors, key)
			removed++
		}
	}
	return removed
}

func (m *moveLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.Allow(clientKey(r)) {
			rateLimited.Inc()
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
