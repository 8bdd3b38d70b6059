// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ListingsScraped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vigia_listings_scraped_total",
			Help: "Total number of new listings persisted by ingestion",
		},
	)

	MatchesFound = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vigia_matches_found_total",
			Help: "Total number of (listing, preference) matches",
		},
	)

	NotificationsEnqueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vigia_notifications_enqueued_total",
			Help: "Total number of notifications enqueued (duplicates excluded)",
		},
	)

	NotificationsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vigia_notifications_dispatched_total",
			Help: "Total number of notifications reaching a terminal status",
		},
		[]string{"status"},
	)

	ExternalCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "vigia_external_call_duration_seconds",
			Help: "Duration of external service calls in seconds",
		},
		[]string{"service"},
	)

	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "vigia_cycle_duration_seconds",
			Help: "Duration of a full scrape-match-dispatch cycle in seconds",
		},
	)
)
