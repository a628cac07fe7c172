package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation"}, // select, insert, update, delete
	)

	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	BookingCreatedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_created_count",
			Help: "Total number of bookings created",
		},
		[]string{"status"}, // status: success, failed
	)

	NotificationDeliveredCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_delivered_count",
			Help: "Total number of notifications written and pushed",
		},
		[]string{"stage"}, // stage: stored, pushed, push_failed
	)

	SlowQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "db_slow_query_duration_seconds",
			Help:    "Duration of queries over the slow-query threshold",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 8),
		},
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func RecordDBQueryDuration(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

func IncrementBookingCreated(status string) {
	BookingCreatedCount.WithLabelValues(status).Inc()
}

func IncrementNotificationDelivered(stage string) {
	NotificationDeliveredCount.WithLabelValues(stage).Inc()
}

func IncrementSlowQuery(duration time.Duration) {
	SlowQueryDuration.Observe(duration.Seconds())
}
