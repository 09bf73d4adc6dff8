// Package metrics exposes Prometheus collectors for the ledger.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by path and status code.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "khata_http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"path", "status"})

	// OperationsTotal counts ledger operations by name and outcome.
	// Outcome is "ok", "rejected" (validation/not-found) or "error".
	OperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "khata_ledger_operations_total",
		Help: "Total number of ledger operations.",
	}, []string{"operation", "outcome"})

	// RateLimitedTotal counts requests refused by the rate limiter.
	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "khata_rate_limited_requests_total",
		Help: "Total number of requests refused by the rate limiter.",
	})
)
