package openai

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	resultSuccess        = "success"
	resultAPIError       = "api_error"
	resultTransportError = "transport_error"
)

var (
	// RequestsTotal counts provider calls.
	// Labels: operation, result (success, api_error, transport_error)
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "brainlib",
			Subsystem: "openai",
			Name:      "requests_total",
			Help:      "Total number of calls to the hosted provider",
		},
		[]string{"operation", "result"},
	)

	// RequestDuration tracks provider call latency, including rate limiter wait.
	// Labels: operation
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "brainlib",
			Subsystem: "openai",
			Name:      "request_duration_seconds",
			Help:      "Duration of calls to the hosted provider in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation"},
	)

	// UploadedBytes counts document bytes sent to the provider.
	UploadedBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "brainlib",
			Subsystem: "openai",
			Name:      "uploaded_bytes_total",
			Help:      "Total number of document bytes uploaded",
		},
	)
)

func resultLabel(err error) string {
	if err == nil {
		return resultSuccess
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return resultAPIError
	}
	return resultTransportError
}
