package handler

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

var securityHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"X-XSS-Protection", "0"},
	{"Permissions-Policy", "camera=(), microphone=(), geolocation=()"},
	// JSON API なので自己オリジン以外は一切読ませない
	{"Content-Security-Policy", "default-src 'self'; frame-ancestors 'none'"},
	{"Strict-Transport-Security", "max-age=63072000; includeSubDomains"},
}

// SecurityHeaders adds the fixed set of security response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range securityHeaders {
			h.Set(kv[0], kv[1])
		}
		next.ServeHTTP(w, r)
	})
}

const rateWindow = time.Minute

// window holds the request times of one client inside the last rateWindow.
type window []time.Time

// prune drops entries older than rateWindow, reusing the backing array.
func (w window) prune(now time.Time) window {
	cutoff := now.Add(-rateWindow)
	kept := w[:0]
	for _, ts := range w {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	return kept
}

// RateLimiter limits requests per client IP over a sliding one-minute window.
type RateLimiter struct {
	limit          int
	trustedProxies int

	mu      sync.Mutex
	clients map[string]window

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter starts a limiter allowing limit requests per minute per client.
// trustedProxies is the number of reverse proxies that append to X-Forwarded-For.
func NewRateLimiter(limit, trustedProxies int) *RateLimiter {
	rl := &RateLimiter{
		limit:          limit,
		trustedProxies: trustedProxies,
		clients:        make(map[string]window),
		stop:           make(chan struct{}),
	}
	go rl.sweep(5 * time.Minute)
	return rl
}

func (rl *RateLimiter) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for ip, w := range rl.clients {
				if w = w.prune(now); len(w) == 0 {
					delete(rl.clients, ip)
				} else {
					rl.clients[ip] = w
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Stop ends the background sweep. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// allow records a request for ip and reports whether it is within the limit.
// When it is not, the returned duration is how long until a slot frees up.
func (rl *RateLimiter) allow(ip string, now time.Time) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w := rl.clients[ip].prune(now)
	if len(w) >= rl.limit {
		rl.clients[ip] = w
		return false, w[0].Add(rateWindow).Sub(now)
	}
	rl.clients[ip] = append(w, now)
	return true, 0
}

// Middleware rejects over-limit clients with 429 and a Retry-After header.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := rl.clientIP(r)
		ok, wait := rl.allow(ip, time.Now())
		if !ok {
			slog.Warn("rate limit exceeded", "client_ip", ip, "path", r.URL.Path)
			w.Header().Set("Retry-After", retryAfterSeconds(wait))
			writeJSON(w, http.StatusTooManyRequests, envelope{
				Status:  "error",
				Message: "Too many requests",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func retryAfterSeconds(d time.Duration) string {
	secs := int(d.Seconds()) + 1
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// clientIP reads the entry our own proxy appended to X-Forwarded-For, counting
// from the right, so client-supplied entries on the left are ignored.
func (rl *RateLimiter) clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" && rl.trustedProxies > 0 {
		parts := strings.Split(xff, ",")
		if idx := len(parts) - rl.trustedProxies; idx >= 0 {
			return strings.TrimSpace(parts[idx])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
