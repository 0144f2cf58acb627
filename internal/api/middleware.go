package api

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hedgeshield/riskdesk/internal/metrics"
	"github.com/hedgeshield/riskdesk/internal/tenant"
)

// Tenant resolves the company from the X-Company header (or the company
// query parameter, for browser WebSocket clients) and stores it on the
// request context. Invalid ids are rejected with 400 invalid_company.
func Tenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(tenant.Header)
		if raw == "" {
			raw = r.URL.Query().Get("company")
		}
		company, err := tenant.Validate(raw)
		if err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r.WithContext(tenant.WithID(r.Context(), company)))
	})
}

// SecurityHeaders sets conservative response headers on every response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs one line per request with zap.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("company", r.Header.Get(tenant.Header)),
			)
		})
	}
}

// RateLimiter admits at most limit requests per client IP within a sliding
// window.
type RateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	hits   map[string][]time.Time
	calls  int
	now    func() time.Time
}

// sweepEvery bounds how often idle IPs are purged.
const sweepEvery = 1024

// NewRateLimiter creates a limiter admitting limit requests per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		window: window,
		hits:   make(map[string][]time.Time),
		now:    time.Now,
	}
}

// Allow records a request from key and reports whether it is admitted.
// Rejected requests are not recorded.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.calls++
	if l.calls%sweepEvery == 0 {
		l.sweep(now)
	}

	bucket := l.prune(l.hits[key], now)
	if len(bucket) >= l.limit {
		l.hits[key] = bucket
		return false
	}
	l.hits[key] = append(bucket, now)
	return true
}

func (l *RateLimiter) prune(bucket []time.Time, now time.Time) []time.Time {
	i := 0
	for i < len(bucket) && now.Sub(bucket[i]) >= l.window {
		i++
	}
	return bucket[i:]
}

func (l *RateLimiter) sweep(now time.Time) {
	for k, bucket := range l.hits {
		if len(l.prune(bucket, now)) == 0 {
			delete(l.hits, k)
		}
	}
}

// Middleware rejects over-limit clients with 429 {"error":"rate_limit"}.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientIP(r)) {
			metrics.RateLimitRejections.Inc()
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate_limit"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr == "" {
		return "unknown"
	}
	return r.RemoteAddr
}
