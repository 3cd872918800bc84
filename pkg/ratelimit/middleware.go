package ratelimit

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/goonhub/goonhub/internal/metrics"
	apperrors "github.com/goonhub/goonhub/pkg/app/errors"
	apphttp "github.com/goonhub/goonhub/pkg/app/http"
)

// Middleware rejects requests over the limit with 429 and a Retry-After
// header. Clients are keyed by route and remote IP; run chi's RealIP first
// when behind a proxy. Limiter failures let the request through.
func Middleware(l Limiter, route string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := route + ":" + clientIP(r)
			d, err := l.Allow(r.Context(), key)
			if err != nil {
				logger.Error("rate limit check failed", zap.String("route", route), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !d.Allowed {
				metrics.RateLimited.WithLabelValues(route).Inc()
				secs := int(math.Ceil(d.RetryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				apphttp.DefaultErrorHandler(w, apperrors.TooManyRequestsError(nil,
					fmt.Sprintf("rate limit exceeded, retry in %d seconds", secs)))
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
