package middleware

import (
	"net"
	"net/http"

	"go.uber.org/zap"

	pkgerrors "plotbot/pkg/errors"
	"plotbot/pkg/ratelimit"
)

// RateLimit rejects callers that exceed limiter with 429. The key is the
// client IP, so RealIP must run first when behind a proxy.
func RateLimit(limiter ratelimit.Limiter, perMinute int, errs *pkgerrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ip:" + clientIP(r)

			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				// fail open
				logger.Warn("rate limiter unavailable", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				errs.Handle(w, r, pkgerrors.NewRateLimitError(perMinute, "1m"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
