package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// NotificationMetrics records delivery outcomes for outbound messages.
type NotificationMetrics struct {
	duration *prometheus.HistogramVec
	sent     *prometheus.CounterVec
	failed   *prometheus.CounterVec
	retries  *prometheus.CounterVec
}

// NewNotificationMetrics registers the notification metrics on the provided registerer.
func NewNotificationMetrics(reg prometheus.Registerer) *NotificationMetrics {
	if reg == nil {
		return &NotificationMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "notification_send_duration_seconds",
		Help:    "Duration of notification sends in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	sent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_sent",
		Help: "Notifications delivered to the provider.",
	}, []string{"kind"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_failed",
		Help: "Notifications dropped after exhausting retries.",
	}, []string{"kind"})
	retries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_retries",
		Help: "Individual retry attempts for notification sends.",
	}, []string{"kind"})
	reg.MustRegister(duration, sent, failed, retries)
	return &NotificationMetrics{
		duration: duration,
		sent:     sent,
		failed:   failed,
		retries:  retries,
	}
}

// ObserveDuration records the send duration for the named notification kind.
func (n *NotificationMetrics) ObserveDuration(kind string, duration time.Duration) {
	if n == nil || n.duration == nil {
		return
	}
	n.duration.WithLabelValues(normalizeLabel(kind)).Observe(duration.Seconds())
}

// IncSent increments the delivered counter for the named kind.
func (n *NotificationMetrics) IncSent(kind string) {
	if n == nil || n.sent == nil {
		return
	}
	n.sent.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncFailed increments the dropped counter for the named kind.
func (n *NotificationMetrics) IncFailed(kind string) {
	if n == nil || n.failed == nil {
		return
	}
	n.failed.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncRetry increments the retry counter for the named kind.
func (n *NotificationMetrics) IncRetry(kind string) {
	if n == nil || n.retries == nil {
		return
	}
	n.retries.WithLabelValues(normalizeLabel(kind)).Inc()
}

func normalizeLabel(kind string) string {
	if kind == "" {
		return "unknown"
	}
	return kind
}
