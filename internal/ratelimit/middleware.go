package ratelimit

import (
	"math"
	"net"
	"net/http"
	"strconv"

	"property-listings-api/internal/handlers"
	"property-listings-api/internal/observability"

	"go.uber.org/zap"
)

// Middleware rejects requests over the limit with 429. Clients are keyed by
// the host of r.RemoteAddr. Forwarding headers are ignored unless chi's
// RealIP middleware runs first.
func Middleware(l *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r.RemoteAddr)

			ok, retryAfter := l.Allow(key)
			if !ok {
				secs := int(math.Ceil(retryAfter.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(secs))

				observability.LoggerWithTrace(r.Context()).Warn("rate limit exceeded",
					zap.String("client", key),
					zap.String("path", r.URL.Path),
					zap.String("request_id", observability.RequestIDFromContext(r.Context())),
				)

				handlers.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
