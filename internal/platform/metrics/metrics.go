package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP holds request metrics labelled by chi route pattern.
type HTTP struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// New registers HTTP metrics with the default registry.
func New() *HTTP {
	return NewWith(prometheus.DefaultRegisterer)
}

func NewWith(reg prometheus.Registerer) *HTTP {
	factory := promauto.With(reg)
	return &HTTP{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fellinglicence_http_requests_total",
			Help: "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fellinglicence_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// Middleware records one observation per request. Unmatched routes share a
// single label to keep cardinality bounded.
func (m *HTTP) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.Requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.Duration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
