package devserver

import (
	"net/http"
	"sync"
	"time"
)

// RateLimiter is a per-client fixed-window limiter. Generous limits;
// it exists so a runaway client loop fails loudly in development
// instead of spinning silently.
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string]*clientWindow
	limit    int
	window   time.Duration
	cleanup  time.Duration
}

type clientWindow struct {
	count     int
	windowEnd time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string]*clientWindow),
		limit:    limit,
		window:   window,
		cleanup:  window * 2,
	}
	go rl.cleanupLoop()
	return rl
}

func NewAPIRateLimiter() *RateLimiter {
	return NewRateLimiter(600, time.Minute)
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanup)
	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for ip, win := range rl.requests {
			if now.After(win.windowEnd) {
				delete(rl.requests, ip)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	win, exists := rl.requests[ip]

	if !exists || now.After(win.windowEnd) {
		rl.requests[ip] = &clientWindow{count: 1, windowEnd: now.Add(rl.window)}
		return true
	}

	if win.count >= rl.limit {
		return false
	}

	win.count++
	return true
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientIP(r)) {
			jsonError(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
