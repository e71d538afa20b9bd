package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Throughput, labelled by backend sub-path and relayed status code
	ProxyRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imagesearch_relay_requests_total",
		Help: "Total number of requests forwarded to the backend",
	}, []string{"path", "method", "status"})

	// Latency including the backend round trip
	ProxyDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "imagesearch_relay_duration_seconds",
		Help:    "Time taken to relay a request to the backend and back",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}, // model inference is slow
	}, []string{"path"})

	// Failures the relay answered itself instead of the backend
	BackendFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imagesearch_relay_backend_failures_total",
		Help: "Total number of backend calls that failed or returned a non-JSON body",
	}, []string{"reason"})
)

// metricPath keeps label cardinality bounded to the known backend endpoints
func metricPath(path string) string {
	switch path {
	case PathClassifyImage, PathSearchSimilarImages, PathSearchImagesByText:
		return path
	default:
		return "other"
	}
}
