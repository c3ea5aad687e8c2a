package http

import (
	"sync"
	"time"
)

// maxRequestsPerMinute bounds POST traffic per client IP.
const maxRequestsPerMinute = 60

// rateWindow is the span one request budget applies to.
const rateWindow = time.Minute

type ipWindow struct {
	startedAt time.Time
	count     int
}

// rateLimiter keeps a fixed-window request count per client IP. A window
// opens on the first request and resets rateWindow later; stale windows are
// swept in the background so the map does not grow with client churn.
type rateLimiter struct {
	mu      sync.Mutex
	windows map[string]*ipWindow
	done    chan struct{}
	once    sync.Once
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		windows: make(map[string]*ipWindow),
		done:    make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// allow records a request from clientIP and reports whether it fits the
// current window.
func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.windows[clientIP]
	if !ok || now.Sub(w.startedAt) >= rateWindow {
		rl.windows[clientIP] = &ipWindow{startedAt: now, count: 1}
		return true
	}
	w.count++
	return w.count <= maxRequestsPerMinute
}

// sweep drops windows that expired with no follow-up traffic.
func (rl *rateLimiter) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, w := range rl.windows {
				if time.Since(w.startedAt) >= 2*rateWindow {
					delete(rl.windows, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// stop terminates the sweeper. Safe to call more than once.
func (rl *rateLimiter) stop() {
	rl.once.Do(func() { close(rl.done) })
}
