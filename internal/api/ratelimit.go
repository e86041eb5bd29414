package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter allows a fixed number of requests per client per window.
type RateLimiter struct {
	// TrustForwarded keys clients by X-Forwarded-For. Enable only behind a
	// proxy that overwrites the header.
	TrustForwarded bool

	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	clients map[string]*quota
	done    chan struct{}
	once    sync.Once
}

type quota struct {
	left  int
	since time.Time
}

// NewRateLimiter allows limit requests per window for each client. Stale
// clients are swept once per window until Stop is called.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		clients: make(map[string]*quota),
		done:    make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// Allow spends one request from the client's quota.
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	q, ok := rl.clients[client]
	if !ok || now.Sub(q.since) >= rl.window {
		q = &quota{left: rl.limit, since: now}
		rl.clients[client] = q
	}
	if q.left <= 0 {
		return false
	}
	q.left--
	return true
}

// RetryAfter returns whole seconds until the client's window resets.
func (rl *RateLimiter) RetryAfter(client string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	q, ok := rl.clients[client]
	if !ok {
		return 0
	}
	remaining := rl.window - rl.now().Sub(q.since)
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1
}

// Stop ends the sweep goroutine.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) sweepLoop() {
	t := time.NewTicker(rl.window)
	defer t.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-t.C:
			rl.sweep()
		}
	}
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for client, q := range rl.clients {
		if now.Sub(q.since) > 2*rl.window {
			delete(rl.clients, client)
		}
	}
}

// clientIP returns the remote address without its port. With trustForwarded
// the first X-Forwarded-For address wins.
func clientIP(r *http.Request, trustForwarded bool) string {
	if xff := r.Header.Get("X-Forwarded-For"); trustForwarded && xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateLimitMiddleware rejects clients over their quota with 429.
func RateLimitMiddleware(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r, rl.TrustForwarded)
		if !rl.Allow(ip) {
			w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter(ip)))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
