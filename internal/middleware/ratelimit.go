// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/olegiv/staffboard/internal/logging"
)

// MsgRateLimited is shown when a client posts the login form too often.
const MsgRateLimited = "Too many login attempts. Please wait a moment and try again."

// limiterCache is a generic rate limiter cache with double-check locking.
type limiterCache[K comparable] struct {
	limiters map[K]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

func newLimiterCache[K comparable](rps float64, burst int) *limiterCache[K] {
	return &limiterCache[K]{
		limiters: make(map[K]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

// get returns the rate limiter for a specific key, creating one if needed.
func (lc *limiterCache[K]) get(key K) *rate.Limiter {
	lc.mu.RLock()
	limiter, exists := lc.limiters[key]
	lc.mu.RUnlock()

	if exists {
		return limiter
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	if limiter, exists = lc.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(lc.rate, lc.burst)
	lc.limiters[key] = limiter
	return limiter
}

// clearIfExceeds drops all entries once the cache grows past maxSize.
func (lc *limiterCache[K]) clearIfExceeds(maxSize int) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if len(lc.limiters) > maxSize {
		lc.limiters = make(map[K]*rate.Limiter)
		return true
	}
	return false
}

func (lc *limiterCache[K]) len() int {
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return len(lc.limiters)
}

// LoginRateLimiter throttles login form submissions per client IP.
type LoginRateLimiter struct {
	cache   *limiterCache[string]
	maxKeys int
}

// NewLoginRateLimiter allows rps sustained posts per IP with the given burst.
func NewLoginRateLimiter(rps float64, burst int) *LoginRateLimiter {
	if rps <= 0 {
		rps = 0.5
	}
	if burst <= 0 {
		burst = 5
	}
	return &LoginRateLimiter{
		cache:   newLimiterCache[string](rps, burst),
		maxKeys: 10000,
	}
}

// Allow reports whether ip may post now.
func (rl *LoginRateLimiter) Allow(ip string) bool {
	return rl.cache.get(ip).Allow()
}

// Sweep bounds memory use; run it periodically.
func (rl *LoginRateLimiter) Sweep() bool {
	return rl.cache.clearIfExceeds(rl.maxKeys)
}

// Run sweeps every interval until stop is closed.
func (rl *LoginRateLimiter) Run(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if rl.Sweep() {
				slog.Info("cleared login rate limiters due to size")
			}
		case <-stop:
			return
		}
	}
}

// Middleware limits POST requests only; the form itself stays reachable.
func (rl *LoginRateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)
			if !rl.Allow(ip) {
				slog.Warn("login rate limit exceeded", "category", logging.CategoryAuth, "ip", ip)
				http.Error(w, MsgRateLimited, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the request's host without port. chi's RealIP middleware
// has already replaced RemoteAddr with the proxy-reported address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
