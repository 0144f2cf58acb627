package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hedgeshield/riskdesk/internal/metrics"
)

// RouterConfig tunes the server's middleware.
type RouterConfig struct {
	RateLimit       int
	RateLimitWindow time.Duration
	RequestTimeout  time.Duration
}

// DefaultRouterConfig admits 120 requests per IP per minute.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		RateLimit:       120,
		RateLimitWindow: time.Minute,
		RequestTimeout:  30 * time.Second,
	}
}

// NewRouter mounts the service and live feed behind the standard middleware
// chain. hub may be nil.
func NewRouter(svc *Service, hub *Hub, cfg RouterConfig, logger *zap.Logger) chi.Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	limiter := NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(SecurityHeaders)
	r.Use(limiter.Middleware)

	r.Get("/health", svc.Health)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(Tenant)

		if hub != nil {
			r.Get("/ws", hub.HandleWS)
		}

		r.Group(func(r chi.Router) {
			if cfg.RequestTimeout > 0 {
				r.Use(middleware.Timeout(cfg.RequestTimeout))
			}
			r.Get("/contracts", svc.ListContracts)
			r.Post("/contracts", svc.CreateContract)
			r.Get("/orders", svc.ListOrders)
			r.Post("/orders", svc.PlaceOrder)
			r.Get("/portfolio", svc.Portfolio)
		})
	})

	return r
}
