package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// httpReqs counts requests by method, route pattern, and status code.
	httpReqs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// httpLat records request duration in seconds by method and route
	// pattern. Status is omitted to keep histogram cardinality low.
	httpLat = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// admissions counts room admission outcomes by result tag.
	admissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "room_admissions_total",
			Help: "Total number of room admission attempts by outcome.",
		},
		[]string{"outcome"},
	)
)

// ObserveAdmission records one admission attempt. Outcomes mirror the API
// error tags: admitted, rejoined, room-not-found, room-busy, room-full,
// internal-error.
func ObserveAdmission(outcome string) {
	admissions.WithLabelValues(outcome).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware instruments every request, labeling by the matched chi route
// pattern so path cardinality stays bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		httpReqs.WithLabelValues(r.Method, path, strconv.Itoa(ww.Status())).Inc()
		httpLat.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
