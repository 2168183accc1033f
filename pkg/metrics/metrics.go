package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Sync engine metrics
	RefreshCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "herald_refresh_cycles_total",
			Help: "Total number of completed refresh cycles",
		},
	)

	RefreshSkippedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "herald_refresh_skipped_total",
			Help: "Total number of refresh invocations dropped by the re-entrancy guard",
		},
	)

	RefreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "herald_refresh_duration_seconds",
			Help:    "Refresh cycle duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	VisibleNotifications = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "herald_visible_notifications",
			Help: "Number of notifications visible to a recipient after the last refresh",
		},
		[]string{"recipient"},
	)

	UnreadNotifications = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "herald_unread_notifications",
			Help: "Unread count for a recipient after the last refresh or mutation",
		},
		[]string{"recipient"},
	)

	// Mutation metrics
	MarkReadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "herald_mark_read_total",
			Help: "Total number of single mark-read operations",
		},
	)

	MarkAllReadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "herald_mark_all_read_total",
			Help: "Total number of mark-all-read operations",
		},
	)

	FallbackMarksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "herald_fallback_marks_total",
			Help: "Total number of per-item fallback mark-read calls issued after a bulk failure",
		},
	)

	FallbackDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "herald_fallback_dropped_total",
			Help: "Total number of unread items dropped from the fallback batch by the size bound",
		},
	)

	// Service call metrics
	ServiceErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "herald_service_errors_total",
			Help: "Total number of server-of-record call failures by operation",
		},
		[]string{"operation"},
	)

	// API metrics (reference server)
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "herald_api_requests_total",
			Help: "Total number of API requests by method and status",
		},
		[]string{"method", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "herald_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	NotificationsPublished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "herald_notifications_published_total",
			Help: "Total number of notifications published to the server of record",
		},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(RefreshCyclesTotal)
	prometheus.MustRegister(RefreshSkippedTotal)
	prometheus.MustRegister(RefreshDuration)
	prometheus.MustRegister(VisibleNotifications)
	prometheus.MustRegister(UnreadNotifications)
	prometheus.MustRegister(MarkReadTotal)
	prometheus.MustRegister(MarkAllReadTotal)
	prometheus.MustRegister(FallbackMarksTotal)
	prometheus.MustRegister(FallbackDroppedTotal)
	prometheus.MustRegister(ServiceErrorsTotal)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
	prometheus.MustRegister(NotificationsPublished)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
