// Package ratelimit caps how often expensive endpoints can be hit per client.
package ratelimit

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// New builds an in-memory limiter from a formatted rate such as "10-H".
func New(rate string) (*limiter.Limiter, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("parsing rate %q: %w", rate, err)
	}

	return limiter.New(memory.NewStore(), r), nil
}

// Middleware rejects requests over the limit with 429, keyed by client IP.
func Middleware(l *limiter.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := l.GetIPKey(r)

			lctx, err := l.Get(r.Context(), ip)
			if err != nil {
				slog.Error("failed to get rate limit context", "ip", ip, "error", err)
				http.Error(w, "internal server error during rate limit check", http.StatusInternalServerError)

				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

			if lctx.Reached {
				slog.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path, "limit", lctx.Limit)
				http.Error(w, "too many requests, try again later", http.StatusTooManyRequests)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
