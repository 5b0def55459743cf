package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wolfman30/sales-call-agent/internal/http/respond"
	"github.com/wolfman30/sales-call-agent/internal/tenancy"
)

const (
	limiterIdleTTL     = 10 * time.Minute
	limiterSweepEvery  = 5 * time.Minute
	rateLimitedMessage = "Too many requests, please try again later"
)

// clientLimiters keeps one token bucket per client key. Idle buckets are
// swept lazily on the request path.
type clientLimiters struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	entries   map[string]*limiterEntry
	lastSweep time.Time
	now       func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiters(rps float64, burst int) *clientLimiters {
	return &clientLimiters{
		limit:     rate.Limit(rps),
		burst:     burst,
		entries:   make(map[string]*limiterEntry),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// reserve reports whether key may proceed and, if not, how long it should wait.
func (c *clientLimiters) reserve(key string) (bool, time.Duration) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if now.Sub(c.lastSweep) >= limiterSweepEvery {
		for k, e := range c.entries {
			if now.Sub(e.lastSeen) > limiterIdleTTL {
				delete(c.entries, k)
			}
		}
		c.lastSweep = now
	}

	e, ok := c.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(c.limit, c.burst)}
		c.entries[key] = e
	}
	e.lastSeen = now

	if e.limiter.AllowN(now, 1) {
		return true, 0
	}
	r := e.limiter.ReserveN(now, 1)
	wait := r.DelayFrom(now)
	r.CancelAt(now)
	return false, wait
}

// RateLimit rejects clients exceeding rps requests per second (with the given
// burst) with 429 and a Retry-After hint. Authenticated callers are keyed by
// user id, everyone else by client IP.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	if rps <= 0 || burst <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiters := newClientLimiters(rps, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := limiters.reserve(clientKey(r))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(wait)))
				respond.JSON(w, http.StatusTooManyRequests, map[string]any{"success": false, "error": rateLimitedMessage})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	if p, ok := tenancy.PrincipalFromContext(r.Context()); ok && p.UserID != "" {
		return "user:" + p.UserID
	}
	// chi's RealIP middleware has already rewritten RemoteAddr when proxied.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

func retryAfterSeconds(wait time.Duration) int {
	secs := int((wait + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
