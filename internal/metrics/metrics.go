package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code", "service"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "service"},
	)

	// StatsIngested counts accepted stats submissions on the desk side,
	// split by reporting platform and signature verification outcome.
	StatsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialdesk_stats_ingested_total",
			Help: "Total number of ingested platform stats submissions",
		},
		[]string{"platform", "signature_verified"},
	)

	// ReportCycles counts reporter cycles by outcome:
	// delivered, aggregation_failed, delivery_failed, skipped.
	ReportCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialdesk_report_cycles_total",
			Help: "Total number of stats report cycles by outcome",
		},
		[]string{"outcome"},
	)
)
