// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter throttles image uploads with a sliding window. Requests are
// counted per signed-in user, falling back to the client address.
type RateLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	limit  int           // max requests per window
	window time.Duration // sliding window duration
	now    func() time.Time
	stopCh chan struct{}
}

// NewRateLimiter creates a rate limiter that allows limit requests per window.
// It starts a background goroutine that forgets idle clients.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    time.Now,
		stopCh: make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.cleanup()
			case <-rl.stopCh:
				return
			}
		}
	}()

	return rl
}

// Stop terminates the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// allow records a hit for key and reports whether it is within the limit.
// When it is not, it also returns how long until the oldest hit expires.
func (rl *RateLimiter) allow(key string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	hits := recent(rl.hits[key], now.Add(-rl.window))
	if len(hits) >= rl.limit {
		rl.hits[key] = hits
		return false, hits[0].Add(rl.window).Sub(now)
	}
	rl.hits[key] = append(hits, now)
	return true, 0
}

// recent drops hits at or before cutoff. hits is in ascending order.
func recent(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}

// cleanup removes clients with no hits inside the window.
func (rl *RateLimiter) cleanup() {
	cutoff := rl.now().Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, hits := range rl.hits {
		if len(recent(hits, cutoff)) == 0 {
			delete(rl.hits, key)
		}
	}
}

// Middleware rejects requests over the limit with 429 and a Retry-After
// header in whole seconds.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := rl.allow(limitKey(r))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(wait.Seconds())+1))
			writeError(w, http.StatusTooManyRequests, "Too many uploads, try again shortly.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// limitKey identifies the client of a request. Proxy headers are resolved
// into RemoteAddr by chi's RealIP earlier in the chain.
func limitKey(r *http.Request) string {
	if sess := SessionFromCtx(r.Context()); sess != nil {
		return "user:" + sess.UserID.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
