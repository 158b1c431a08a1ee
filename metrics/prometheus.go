package metrics

import "github.com/prometheus/client_golang/prometheus"

var HttpRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests received",
	},
	[]string{"endpoint", "status", "method"},
)

var HttpRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"endpoint", "method"},
)

var HttpErrorsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_errors_total",
		Help: "Total number of failed HTTP requests (4xx/5xx)",
	},
	[]string{"endpoint", "status", "method"},
)

var HttpRateLimitRejectionsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "http_rate_limit_rejections_total",
		Help: "Total number of HTTP requests rejected due to rate limiting",
	},
)

var NotificationsAttemptedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notifications_attempted_total",
		Help: "Total number of notifications attempted",
	},
	[]string{"channel", "status", "provider"},
)

var NotificationSendDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "notification_send_duration_seconds",
		Help:    "Time taken to send notifications via external providers",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"provider", "channel"},
)

var NotificationRetriesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notification_retries_total",
		Help: "Total number of notification retries",
	},
	[]string{"reason", "channel"},
)

var NotificationDLQTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notification_dlq_total",
		Help: "Total number of notifications sent to DLQ",
	},
	[]string{"reason", "channel"},
)

var BrokerPublishFailureTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "broker_publish_failure_total",
		Help: "Total number of failed AMQP publishes",
	},
	[]string{"routing_key"},
)

var BrokerConsumeFailureTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "broker_consume_failure_total",
		Help: "Total number of deliveries dropped for failing to decode",
	},
	[]string{"queue"},
)

func InitAPIMetrics() {
	prometheus.MustRegister(HttpRequestsTotal)
	prometheus.MustRegister(HttpRequestDuration)
	prometheus.MustRegister(HttpErrorsTotal)
	prometheus.MustRegister(HttpRateLimitRejectionsTotal)
}

func InitWorkerMetrics() {
	prometheus.MustRegister(NotificationsAttemptedTotal)
	prometheus.MustRegister(NotificationSendDuration)
	prometheus.MustRegister(NotificationRetriesTotal)
	prometheus.MustRegister(NotificationDLQTotal)
	prometheus.MustRegister(BrokerPublishFailureTotal)
	prometheus.MustRegister(BrokerConsumeFailureTotal)
}

