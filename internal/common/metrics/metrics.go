// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PhotoRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_requests_total",
			Help: "Total number of photo requests by outcome",
		},
		[]string{"outcome"},
	)

	PhotoStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_stage_duration_seconds",
			Help:    "Duration of each pipeline stage in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	PhotoEnrichment = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_enrichment_total",
			Help: "Outcome of optional enrichment steps (found, absent, failed)",
		},
		[]string{"stage", "status"},
	)

	PhotoNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_notifications_total",
			Help: "Notification deliveries per sink and outcome",
		},
		[]string{"sink", "outcome"},
	)

	PhotoJobsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_jobs_active",
			Help: "Number of photo requests currently being processed",
		},
	)
)
