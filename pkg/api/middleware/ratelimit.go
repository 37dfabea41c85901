// Zaparoo Indexer
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Indexer.
//
// Zaparoo Indexer is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Indexer is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Indexer.  If not, see <http://www.gnu.org/licenses/>.

package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/ZaparooProject/zaparoo-indexer/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	DefaultRequestsPerMinute = 300
	DefaultBurstSize         = 60
	limiterMaxAge            = 10 * time.Minute
	cleanupInterval          = 5 * time.Minute
)

// IPRateLimiter hands out one token bucket per client IP.
type IPRateLimiter struct {
	clock    clockwork.Clock
	limiters map[string]*rateLimiterEntry
	limit    rate.Limit
	burst    int
	mu       syncutil.Mutex
}

type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPRateLimiter allows perMinute requests per client with the given
// burst. Non-positive values use the defaults.
func NewIPRateLimiter(clock clockwork.Clock, perMinute, burst int) *IPRateLimiter {
	if perMinute <= 0 {
		perMinute = DefaultRequestsPerMinute
	}
	if burst <= 0 {
		burst = DefaultBurstSize
	}
	return &IPRateLimiter{
		clock:    clock,
		limiters: make(map[string]*rateLimiterEntry),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
	}
}

func (rl *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.limiters[ip]
	if !ok {
		entry = &rateLimiterEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[ip] = entry
	}
	entry.lastSeen = rl.clock.Now()
	return entry.limiter
}

// Cleanup forgets clients not seen for ten minutes.
func (rl *IPRateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	for ip, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > limiterMaxAge {
			delete(rl.limiters, ip)
			log.Debug().Str("ip", ip).Msg("removed stale rate limiter")
		}
	}
}

func (rl *IPRateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// StartCleanup runs Cleanup periodically until ctx is cancelled.
func (rl *IPRateLimiter) StartCleanup(ctx context.Context) {
	go func() {
		ticker := rl.clock.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.Chan():
				rl.Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()
}

func HTTPRateLimitMiddleware(limiter *IPRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := ParseRemoteIP(r.RemoteAddr).String()
			if !limiter.GetLimiter(host).Allow() {
				log.Warn().
					Str("ip", host).
					Str("path", r.URL.Path).
					Str("method", r.Method).
					Msg("HTTP rate limit exceeded")

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"too many requests"}` + "\n"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
