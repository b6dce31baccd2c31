package platform

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "textloop",
			Subsystem: "platform_client",
			Name:      "request_duration_seconds",
			Help:      "Duration of requests to the platform API.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	requestOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "textloop",
			Subsystem: "platform_client",
			Name:      "requests_total",
			Help:      "Requests to the platform API by outcome class.",
		},
		[]string{"method", "path", "outcome"},
	)
)

// outcomeLabel buckets a request result for metrics.
func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	apiErr := AsError(err)
	switch {
	case apiErr == nil:
		return "error"
	case apiErr.IsNetworkError:
		return "network_error"
	case apiErr.IsTimeoutError:
		return "timeout"
	case apiErr.Status == 401:
		return "unauthorized"
	case apiErr.Status >= 500:
		return "server_error"
	default:
		return "client_error"
	}
}
