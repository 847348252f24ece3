package fakeapi

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Wjwesley1/queen-store-frontend/pkg/health"
	"github.com/Wjwesley1/queen-store-frontend/pkg/httputil"
	"github.com/Wjwesley1/queen-store-frontend/pkg/middleware"
)

const serviceName = "fakeapi"

// NewRouter creates a chi router with every store endpoint registered.
func NewRouter(h *Handler, healthHandler *health.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.With(middleware.CacheControl(60)).Get("/produtos", h.ListProducts)

		r.Route("/carrinho", func(r chi.Router) {
			r.Use(middleware.NoStore())
			r.Use(RequireSession)

			r.Get("/", h.GetCart)
			r.Post("/", h.AddCartLine)
			r.Put("/{id}", h.UpdateCartLine)
			r.Delete("/{id}", h.DeleteCartLine)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(h.tokens.Validate))
			r.Post("/pedidos", h.CreateOrder)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.NoStore())
			r.Use(middleware.Auth(h.tokens.Validate))
			r.Get("/cliente/pedidos", h.ListCustomerOrders)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.NoStore())
			r.Post("/login", h.Login)
			r.Post("/register", h.Register)
			r.Get("/verify/{token}", h.Verify)
			r.Post("/resend-verification", h.ResendVerification)
		})

		r.Post("/contato", h.Subscribe)
	})

	return r
}

// RequireSession rejects cart requests that carry no session id.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sessionFrom(r) == "" {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorEnvelope{
				Error: &httputil.ErrorResponse{
					Code:    "INVALID_INPUT",
					Message: middleware.HeaderSessionID + " header is required",
				},
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.ErrorEnvelope{
					Error: &httputil.ErrorResponse{
						Code:    "UNSUPPORTED_MEDIA_TYPE",
						Message: "Content-Type must be application/json",
					},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
