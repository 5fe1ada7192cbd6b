/*
 * MIT License
 *
 * Copyright (c) 2026 Nguyen Thanh Phuong
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package ratelimit bounds the request rate a small device has to absorb.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/phuonguno98/chunksite/internal/metrics"
	"golang.org/x/time/rate"
)

const (
	maxTrackedClients = 1024
	clientIdleTimeout = 10 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter applies global and per-client request limits.
type Limiter struct {
	global *rate.Limiter
	perIP  map[string]*clientLimiter
	mu     sync.Mutex

	rps   rate.Limit
	burst int
}

// New creates a Limiter allowing rps requests per second with the given burst,
// both globally and per client address.
func New(rps float64, burst int) *Limiter {
	return &Limiter{
		global: rate.NewLimiter(rate.Limit(rps), burst),
		perIP:  make(map[string]*clientLimiter),
		rps:    rate.Limit(rps),
		burst:  burst,
	}
}

// Middleware rejects requests over the limit with 429. m may be nil.
func (l *Limiter) Middleware(m *metrics.Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientIP(r)) {
			if m != nil {
				m.RateLimitDropped.Inc()
			}
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *Limiter) allow(ip string) bool {
	if !l.global.Allow() {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	item, ok := l.perIP[ip]
	if !ok {
		item = &clientLimiter{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.perIP[ip] = item
	}
	item.lastSeen = now

	if len(l.perIP) > maxTrackedClients {
		l.cleanupLocked(now.Add(-clientIdleTimeout))
	}

	return item.limiter.Allow()
}

func (l *Limiter) cleanupLocked(threshold time.Time) {
	for ip, entry := range l.perIP {
		if entry.lastSeen.Before(threshold) {
			delete(l.perIP, ip)
		}
	}
}

func clientIP(r *http.Request) string {
	if forwardedFor := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		return strings.TrimSpace(first)
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
