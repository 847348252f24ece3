package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig holds configuration for the CORS middleware.
type CORSConfig struct {
	// AllowedOrigins lists accepted origins. "*" accepts any origin.
	AllowedOrigins []string

	// AllowedMethods defaults to GET, POST, PUT, DELETE, OPTIONS.
	AllowedMethods []string

	// AllowedHeaders defaults to the headers the storefront client sends.
	AllowedHeaders []string

	// ExposedHeaders is the list of headers the browser may read.
	ExposedHeaders []string

	// MaxAge is the preflight cache lifetime in seconds. Defaults to 3600.
	MaxAge int

	AllowCredentials bool

	// Environment "development" accepts any origin regardless of AllowedOrigins.
	Environment string
}

var (
	defaultCORSMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	defaultCORSHeaders = []string{"Accept", "Authorization", "Content-Type", HeaderCorrelationID, HeaderSessionID}
)

// DefaultCORSConfig allows any origin, which is what a storefront dev server
// on another port needs.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: defaultCORSMethods,
		AllowedHeaders: defaultCORSHeaders,
		ExposedHeaders: []string{HeaderCorrelationID},
		MaxAge:         3600,
		Environment:    "development",
	}
}

// CORS answers preflight requests and decorates responses with the
// Access-Control headers derived from cfg.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	if len(cfg.AllowedMethods) == 0 {
		cfg.AllowedMethods = defaultCORSMethods
	}
	if len(cfg.AllowedHeaders) == 0 {
		cfg.AllowedHeaders = defaultCORSHeaders
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 3600
	}

	anyOrigin := cfg.Environment == "development"
	origins := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		anyOrigin = anyOrigin || o == "*"
		origins[o] = true
	}

	static := map[string]string{
		"Access-Control-Allow-Methods": strings.Join(cfg.AllowedMethods, ", "),
		"Access-Control-Allow-Headers": strings.Join(cfg.AllowedHeaders, ", "),
		"Access-Control-Max-Age":       strconv.Itoa(cfg.MaxAge),
	}
	if len(cfg.ExposedHeaders) > 0 {
		static["Access-Control-Expose-Headers"] = strings.Join(cfg.ExposedHeaders, ", ")
	}
	if cfg.AllowCredentials {
		static["Access-Control-Allow-Credentials"] = "true"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			switch origin := r.Header.Get("Origin"); {
			case anyOrigin:
				h.Set("Access-Control-Allow-Origin", "*")
			case origins[origin]:
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
			for k, v := range static {
				h.Set(k, v)
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
