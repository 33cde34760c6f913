// Package metrics exposes the storefront's Prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	orderOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_order_operations_total",
			Help: "Total number of order operations",
		},
		[]string{"operation", "status"},
	)

	paymentChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_payment_checks_total",
			Help: "Payment verification outcomes",
		},
		[]string{"outcome"},
	)
)

// Payment check outcomes.
const (
	PaymentVerified      = "verified"
	PaymentNotVerified   = "not_verified"
	PaymentDuplicate     = "duplicate"
	PaymentMismatch      = "amount_mismatch"
	PaymentProviderError = "provider_error"
	PaymentLedgerError   = "ledger_error"
)

// PrometheusMiddleware records count and latency per route template.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
	}
}

func RecordOrderOperation(operation string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	orderOperations.WithLabelValues(operation, status).Inc()
}

func RecordPaymentCheck(outcome string) {
	paymentChecks.WithLabelValues(outcome).Inc()
}

// PaymentChecks returns the counter for one payment check outcome.
func PaymentChecks(outcome string) prometheus.Counter {
	return paymentChecks.WithLabelValues(outcome)
}
