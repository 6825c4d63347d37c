// Package metrics defines the Prometheus collectors for crudimg.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var registerOnce sync.Once

// HTTP metrics, labelled by the matched route pattern rather than the raw
// path so that item IDs and image keys don't explode label cardinality.
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crudimg_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crudimg_http_request_duration_seconds",
			Help:    "Request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Object store metrics.
var (
	ObjectStoreOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crudimg_object_store_operations_total",
			Help: "Object store operations by type and outcome",
		},
		[]string{"operation", "status"},
	)

	UploadedBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crudimg_uploaded_bytes_total",
			Help: "Total image bytes uploaded to the object store",
		},
	)
)

// Register registers all collectors with the default registry. Safe to call
// more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			ObjectStoreOperationsTotal,
			UploadedBytesTotal,
		)
	})
}

// ObserveObjectStore counts one object store operation.
func ObserveObjectStore(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ObjectStoreOperationsTotal.WithLabelValues(operation, status).Inc()
}
