package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/kiranshivaraju/hireflow/internal/api/response"
	"github.com/kiranshivaraju/hireflow/internal/cache"
)

const (
	defaultRequestsPerMinute = 60
	rateLimitWindow          = time.Minute
)

// RateLimit provides fixed-window rate limiting via Redis.
type RateLimit struct {
	cache          cache.Cache
	requestsPerMin int
	now            func() time.Time
}

// NewRateLimit creates a new RateLimit middleware.
func NewRateLimit(c cache.Cache, requestsPerMin int) *RateLimit {
	if requestsPerMin <= 0 {
		requestsPerMin = defaultRequestsPerMinute
	}
	return &RateLimit{cache: c, requestsPerMin: requestsPerMin, now: time.Now}
}

// Limit counts requests per authenticated caller, falling back to the
// remote address for anonymous routes. Cache errors let the request through.
func (rl *RateLimit) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject := "ip:" + clientIP(r)
		if id, ok := GetIdentity(r); ok {
			subject = "user:" + id.ID.String()
		}

		windowStart := rl.now().Truncate(rateLimitWindow)
		key := cache.RateLimitKey(subject + ":" + strconv.FormatInt(windowStart.Unix(), 10))
		count, err := rl.cache.IncrWithExpiry(r.Context(), key, rateLimitWindow)
		if err != nil {
			slog.Warn("rate limit check failed, allowing request",
				"subject", subject,
				"error", err,
			)
			next.ServeHTTP(w, r)
			return
		}

		remaining := rl.requestsPerMin - int(count)
		if remaining < 0 {
			remaining = 0
		}
		reset := windowStart.Add(rateLimitWindow)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.requestsPerMin))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

		if count > int64(rl.requestsPerMin) {
			retry := int(reset.Sub(rl.now()).Seconds()) + 1
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			response.Error(w, http.StatusTooManyRequests,
				"RATE_LIMIT_EXCEEDED", "Too many requests", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
