package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reminder_scan_duration_seconds",
			Help:    "Duration of one reminder scan tick in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
	)

	RecordsCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "records_call_latency_ms",
			Help:    "Records service call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"resource", "status"},
	)

	RemindersFired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_fired_total",
			Help: "Total number of reminder notifications created",
		},
		[]string{"kind"}, // kind: medication, appointment
	)

	RemindersSuppressed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_suppressed_total",
			Help: "Total number of due candidates suppressed by the dedup store",
		},
		[]string{"kind"},
	)

	RecordsFetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_fetch_failures_total",
			Help: "Total number of failed records service fetches",
		},
		[]string{"resource", "error_type"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)
)

func RecordScanDuration(duration time.Duration) {
	ScanDuration.Observe(duration.Seconds())
}

func RecordRecordsCallLatency(resource, status string, duration time.Duration) {
	RecordsCallLatency.WithLabelValues(resource, status).Observe(float64(duration.Milliseconds()))
}

func IncrementReminderFired(kind string) {
	RemindersFired.WithLabelValues(kind).Inc()
}

func IncrementReminderSuppressed(kind string) {
	RemindersSuppressed.WithLabelValues(kind).Inc()
}

func IncrementRecordsFetchFailure(resource, errorType string) {
	RecordsFetchFailures.WithLabelValues(resource, errorType).Inc()
}

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
