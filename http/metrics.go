package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts requests by route pattern and status code.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodfuel_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "status"},
	)

	// RequestDuration tracks handler latency by route pattern.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moodfuel_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"route"},
	)

	// PredictionsTotal counts prediction outcomes: ok, invalid or error.
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodfuel_predictions_total",
			Help: "Total number of prediction requests by outcome",
		},
		[]string{"outcome"},
	)

	// RecommendedStrength records the distribution of served recommendations.
	RecommendedStrength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moodfuel_recommended_strength",
			Help:    "Recommended coffee strength returned by /predict",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		},
	)
)

// instrument 记录单个路由的请求数与耗时
func instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := wrapWriter(w)
		next.ServeHTTP(wrapped, r)
		RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		RequestsTotal.WithLabelValues(route, strconv.Itoa(wrapped.statusCode)).Inc()
	})
}
