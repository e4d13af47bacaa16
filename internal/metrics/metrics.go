package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitbook_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitbook_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ReservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitbook_reservations_total",
			Help: "Total number of reservation lifecycle transitions",
		},
		[]string{"state"},
	)

	CancellationRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitbook_cancellation_rejections_total",
			Help: "Cancellations rejected by the cancellation policy",
		},
	)

	LateCancellationFeesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitbook_late_cancellation_fees_total",
			Help: "Late cancellation fees computed",
		},
	)

	PackDebitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitbook_pack_debits_total",
			Help: "Session pack debits by reason",
		},
		[]string{"reason"},
	)

	PacksCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitbook_packs_created_total",
			Help: "Session packs sold",
		},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitbook_notifications_total",
			Help: "Notification dispatch attempts by channel and status",
		},
		[]string{"channel", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fitbook_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordReservation(state string) {
	ReservationsTotal.WithLabelValues(state).Inc()
}

func RecordCancellationRejection() {
	CancellationRejectionsTotal.Inc()
}

func RecordLateCancellationFee() {
	LateCancellationFeesTotal.Inc()
}

func RecordPackDebit(reason string) {
	PackDebitsTotal.WithLabelValues(reason).Inc()
}

func RecordPackCreated() {
	PacksCreatedTotal.Inc()
}

func RecordNotification(channel, status string) {
	NotificationsTotal.WithLabelValues(channel, status).Inc()
}

func SetEmailQueueLength(length float64) {
	EmailQueueLength.Set(length)
}
