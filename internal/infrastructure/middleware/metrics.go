package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var httpDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "textloop",
		Subsystem: "gateway",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of handled HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)

// MetricsMiddleware records a duration histogram per route pattern. The chi
// route pattern is used instead of the raw path to keep label cardinality
// bounded.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			httpDuration.
				WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).
				Observe(time.Since(start).Seconds())
		})
	}
}
