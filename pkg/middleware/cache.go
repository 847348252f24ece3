package middleware

import (
	"fmt"
	"net/http"
)

// CacheControl marks successful GET responses as publicly cacheable for maxAge seconds.
func CacheControl(maxAge int) func(http.Handler) http.Handler {
	value := fmt.Sprintf("public, max-age=%d", maxAge)
	return setCacheHeader(func(r *http.Request) string {
		if r.Method == http.MethodGet {
			return value
		}
		return ""
	})
}

// NoStore forbids caching, for session-scoped resources such as the cart.
func NoStore() func(http.Handler) http.Handler {
	return setCacheHeader(func(*http.Request) string { return "no-store" })
}

func setCacheHeader(valueFor func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v := valueFor(r); v != "" {
				w.Header().Set("Cache-Control", v)
			}
			next.ServeHTTP(w, r)
		})
	}
}
