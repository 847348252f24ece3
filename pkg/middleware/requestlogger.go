package middleware

import (
	"log/slog"
	"net/http"

	"github.com/Wjwesley1/queen-store-frontend/pkg/logger"
)

// RequestLogger stores a request-scoped logger in the context, enriched with
// correlation_id, session_id and trace ids. Mount it after RequestLogging and
// Tracing. Auth and OptionalAuth mounted later add customer_id to it.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if sessionID := r.Header.Get(HeaderSessionID); sessionID != "" {
				ctx = logger.WithSessionID(ctx, sessionID)
			}
			if customerID := CustomerIDFromContext(ctx); customerID != "" {
				ctx = logger.WithCustomerID(ctx, customerID)
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
