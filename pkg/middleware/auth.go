package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Wjwesley1/queen-store-frontend/pkg/httputil"
	"github.com/Wjwesley1/queen-store-frontend/pkg/logger"
)

type contextKeyType string

const (
	customerIDKey contextKeyType = "customer_id"
	emailKey      contextKeyType = "email"
)

// Claims is what a TokenValidator extracts from a customer bearer token.
type Claims struct {
	CustomerID string
	Email      string
}

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator func(token string) (*Claims, error)

// Auth rejects requests without a valid bearer token.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return authenticate(validate, true)
}

// OptionalAuth attaches claims when a valid bearer token is present and lets
// anonymous requests through. Invalid tokens are still rejected.
func OptionalAuth(validate TokenValidator) func(http.Handler) http.Handler {
	return authenticate(validate, false)
}

func authenticate(validate TokenValidator, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				if required {
					writeAuthError(w, "missing authorization header")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
				writeAuthError(w, "invalid authorization header format")
				return
			}

			claims, err := validate(token)
			if err != nil {
				writeAuthError(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), customerIDKey, claims.CustomerID)
			ctx = context.WithValue(ctx, emailKey, claims.Email)
			ctx = logger.WithCustomerID(ctx, claims.CustomerID)
			// A logger stored by RequestLogger predates auth.
			if l, ok := logger.Stored(ctx); ok {
				ctx = logger.NewContext(ctx, l.With(slog.String("customer_id", claims.CustomerID)))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CustomerIDFromContext returns the authenticated customer id, or "".
func CustomerIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(customerIDKey).(string); ok {
		return id
	}
	return ""
}

// EmailFromContext returns the authenticated customer email, or "".
func EmailFromContext(ctx context.Context) string {
	if email, ok := ctx.Value(emailKey).(string); ok {
		return email
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, message string) {
	httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorEnvelope{
		Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: message},
	})
}
