// Package metrics provides Prometheus instrumentation for the risk desk client
// and the reference API server.
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// --- Server side ---

	// ContractsCreated counts contracts opened, partitioned by pair.
	ContractsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riskdesk_contracts_created_total",
		Help: "Total number of forward contracts created",
	}, []string{"pair"})

	// OrdersPlaced counts hedge orders recorded, partitioned by side.
	OrdersPlaced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riskdesk_orders_placed_total",
		Help: "Total number of hedge orders recorded",
	}, []string{"side"})

	// RateLimitRejections counts requests rejected by the per-IP limiter.
	RateLimitRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "riskdesk_rate_limit_rejections_total",
		Help: "Requests rejected by the rate limiter",
	})

	// WebSocketClients tracks connected live-feed clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "riskdesk_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, route, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riskdesk_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "riskdesk_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})

	// --- Client side ---

	// GatewayRequests counts API calls made by the desk client.
	// outcome is "ok", "api_error" or "transport_error".
	GatewayRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riskdesk_gateway_requests_total",
		Help: "API calls issued by the desk client",
	}, []string{"method", "path", "outcome"})

	// GatewayLatency tracks client-observed API latency.
	GatewayLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "riskdesk_gateway_latency_seconds",
		Help:    "Client-observed API call latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// StoreReloads counts collection reloads by result: applied, stale, failed.
	StoreReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riskdesk_store_reloads_total",
		Help: "Collection reloads by collection and result",
	}, []string{"collection", "result"})

	// DeskActions counts operator write actions by outcome.
	DeskActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riskdesk_desk_actions_total",
		Help: "Operator write actions by action and outcome",
	}, []string{"action", "outcome"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Use the route pattern for path label to avoid high cardinality.
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets the live feed upgrade connections through the middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("metrics: response writer does not support hijacking")
	}
	return h.Hijack()
}
