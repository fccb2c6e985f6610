// Package api is the HTTP surface: routing, request guards and error mapping.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	httpSwagger "github.com/swaggo/http-swagger"

	"shopify-app-backend/internal/application"
	"shopify-app-backend/internal/domain"
)

// RequestObserver records request latency by route pattern
type RequestObserver interface {
	ObserveRequest(route, method string, status int, elapsed time.Duration)
}

// RouterOptions configures the parts of the router outside the handlers
type RouterOptions struct {
	AllowedOrigins []string
	// Observer is optional
	Observer RequestObserver
	// MetricsHandler serves /metrics when set
	MetricsHandler http.Handler
	// SwaggerFile is the OpenAPI document served at /swagger/doc.json
	SwaggerFile string
}

// NewRouter builds the chi router for every route of the backend
func NewRouter(h *Handler, opts RouterOptions, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(logger))
	r.Use(logRequestID)
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Request handled")
	}))
	r.Use(middleware.Recoverer)
	if opts.Observer != nil {
		r.Use(observeRequests(opts.Observer))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"authorization", "content-type", "x-shopify-access-token", "x-shopify-oauth-state-param"},
		AllowCredentials: true,
	}))

	r.Get("/health", h.Health)
	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}
	if opts.SwaggerFile != "" {
		r.Get("/swagger/doc.json", func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			http.ServeFile(w, req, opts.SwaggerFile)
		})
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	}

	r.Get("/api/login", h.Login)
	r.Post("/api/login", h.Login)
	r.Get(application.CallbackPath, h.Callback)

	r.Post(application.UninstallWebhookPath, h.verifiedWebhook(domain.TopicAppUninstalled, h.Uninstall))
	r.Post(application.OrderCreateWebhookPath, h.verifiedWebhook(domain.TopicOrdersCreate, h.Webhook))
	r.Post("/api/webhooks/compliance", h.verifiedWebhook("", h.Webhook))

	r.Group(func(r chi.Router) {
		r.Use(h.requireSession)
		r.Get("/api/orders", h.ListOrders)
		r.Get("/api/products", h.ListProducts)
	})

	return r
}

// logRequestID adds chi's request id to the request logger
func logRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			logger := zerolog.Ctx(r.Context())
			logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("request_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}

func observeRequests(observer RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			observer.ObserveRequest(route, r.Method, ww.Status(), time.Since(start))
		})
	}
}
