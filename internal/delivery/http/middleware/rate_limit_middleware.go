package middleware

import (
	"net/http"
	"time"

	"hospital-scheduling/pkg/response"

	"github.com/go-chi/httprate"
)

// RateLimit limits each client IP to requestsPerSecond. Zero disables limiting.
func RateLimit(requestsPerSecond int) func(http.Handler) http.Handler {
	if requestsPerSecond <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		requestsPerSecond,
		time.Second,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			response.Error(w, http.StatusTooManyRequests, "Too many requests, slow down", nil)
		}),
	)
}
