package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"plotbot/interfaces/http/rest/handlers"
	"plotbot/interfaces/http/rest/middleware"
	pkgerrors "plotbot/pkg/errors"
	"plotbot/pkg/ratelimit"
)

// Router creates and configures the HTTP router
type Router struct {
	webhook *handlers.WebhookHandler
	plots   *handlers.PlotHandler
	health  *handlers.HealthHandler
	errs    *pkgerrors.ErrorHandler
	logger  *zap.Logger

	limiter   ratelimit.Limiter
	perMinute int

	// optional
	observer       middleware.HTTPObserver
	metricsHandler http.Handler
}

// RouterOption configures optional router features.
type RouterOption func(*Router)

// WithRateLimit throttles /api/v1 per client IP.
func WithRateLimit(limiter ratelimit.Limiter, perMinute int) RouterOption {
	return func(rt *Router) {
		rt.limiter = limiter
		rt.perMinute = perMinute
	}
}

// WithMetrics records HTTP metrics through obs and serves h on /metrics.
func WithMetrics(obs middleware.HTTPObserver, h http.Handler) RouterOption {
	return func(rt *Router) {
		rt.observer = obs
		rt.metricsHandler = h
	}
}

// NewRouter creates a new router instance
func NewRouter(
	webhook *handlers.WebhookHandler,
	plots *handlers.PlotHandler,
	health *handlers.HealthHandler,
	errs *pkgerrors.ErrorHandler,
	logger *zap.Logger,
	opts ...RouterOption,
) *Router {
	rt := &Router{
		webhook: webhook,
		plots:   plots,
		health:  health,
		errs:    errs,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.observer != nil {
		router.Use(middleware.Metrics(rt.observer))
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errs.HandleStatus(w, r, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rt.errs.HandleStatus(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.Get("/health", rt.health.Health)
	router.Get("/ready", rt.health.Ready)
	if rt.metricsHandler != nil {
		router.Method(http.MethodGet, "/metrics", rt.metricsHandler)
	}

	// LINE webhook; the signature is the only authentication.
	router.Post("/callback", rt.webhook.Callback)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID", "X-Plot-Request-ID"},
			MaxAge:         300,
		}))
		r.Use(rt.errs.Middleware)
		if rt.limiter != nil {
			r.Use(middleware.RateLimit(rt.limiter, rt.perMinute, rt.errs, rt.logger))
		}

		r.Get("/functions", rt.plots.ListFunctions)
		r.Post("/plots", rt.plots.CreatePlot)
		r.Post("/plots/image", rt.plots.RenderPlot)
	})

	return router
}
