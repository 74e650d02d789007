package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tabula/tabula/internal/models"
)

const clientIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client. Each bucket holds
// limitPerMinute tokens and refills at limitPerMinute per minute.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   int
}

func NewRateLimiter(limitPerMinute int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   limitPerMinute,
	}
	// Cleanup goroutine
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			rl.cleanup()
		}
	}()
	return rl
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, cl := range rl.clients {
		if time.Since(cl.lastSeen) > clientIdleTTL {
			delete(rl.clients, key)
		}
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if cl, ok := rl.clients[key]; ok {
		cl.lastSeen = time.Now()
		return cl.limiter
	}
	l := rate.NewLimiter(rate.Every(time.Minute/time.Duration(rl.limit)), rl.limit)
	rl.clients[key] = &clientLimiter{limiter: l, lastSeen: time.Now()}
	return l
}

// RateLimit allows limitPerMinute requests per client per minute. A client is
// the API key reported by identify, or its IP when identify is nil or reports
// "". A non-positive limit disables it.
func RateLimit(limitPerMinute int, identify func(*http.Request) string) func(http.Handler) http.Handler {
	if limitPerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	rl := NewRateLimiter(limitPerMinute)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := rl.limiter(clientKey(r, identify))
			reservation := limiter.Reserve()
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limitPerMinute))

			if !reservation.OK() {
				writeTooManyRequests(w, 60)
				return
			}
			if delay := reservation.Delay(); delay > 0 {
				reservation.Cancel()
				writeTooManyRequests(w, int(delay.Seconds())+1)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(int(limiter.Tokens()), 0)))
			next.ServeHTTP(w, r)
		})
	}
}

func writeTooManyRequests(w http.ResponseWriter, retryAfterSecs int) {
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSecs))
	models.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
}

func clientKey(r *http.Request, identify func(*http.Request) string) string {
	if identify != nil {
		if key := identify(r); key != "" {
			return "key:" + key
		}
	}
	return "ip:" + clientIP(r)
}

// clientIP strips the port from RemoteAddr. Proxy headers are honoured only
// through chi's RealIP, which rewrites RemoteAddr before this runs.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
