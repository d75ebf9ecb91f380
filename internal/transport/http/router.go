package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterConfig wires the handlers to their collaborators.
type RouterConfig struct {
	Events        EventService
	Permissions   AdsPermissionService
	CallerAddress CallerAddressFunc
	CORSOrigins   []string
	Logger        *zap.Logger
	// Registry serves /metrics and receives the HTTP collectors when set.
	Registry *prometheus.Registry
}

// NewRouter builds the API handler.
func NewRouter(cfg RouterConfig) http.Handler {
	callerAddress := cfg.CallerAddress
	if callerAddress == nil {
		callerAddress = RemoteIP
	}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return RequestLogger(next, cfg.Logger)
	})
	if cfg.Registry != nil {
		r.Use(NewRequestMetrics(cfg.Registry).Middleware)
	}
	r.Use(CORS(cfg.CORSOrigins))

	r.NotFound(NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(MethodNotAllowedHandler().ServeHTTP)

	r.Get("/health", HealthHandler)
	if cfg.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/events", func(r chi.Router) {
		r.Get("/", HandleListEvents(cfg.Events))
		r.Post("/", HandleCreateEvent(cfg.Events, callerAddress))
		r.Get("/{id}", HandleGetEvent(cfg.Events))
		r.Put("/{id}", HandleUpdateEvent(cfg.Events, callerAddress))
		r.Delete("/{id}", HandleDeleteEvent(cfg.Events, callerAddress))
	})
	r.Get("/users/permissions/ads", HandleAdsPermission(cfg.Permissions, callerAddress))

	return r
}
