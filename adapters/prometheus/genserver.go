package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/gensrv-go/core/genserver"
	"github.com/codewandler/gensrv-go/core/metrics"
)

// serverMetrics implements genserver.Metrics using Prometheus.
type serverMetrics struct {
	messageDuration *prometheus.HistogramVec
	messagesTotal   *prometheus.CounterVec
	panicsTotal     *prometheus.CounterVec
	mailboxDepth    *prometheus.GaugeVec
}

// NewMetrics creates a Prometheus implementation of genserver.Metrics and
// registers its collectors with reg.
func NewMetrics(reg prometheus.Registerer) genserver.Metrics {
	m := &serverMetrics{
		messageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gensrv_message_duration_seconds",
			Help:    "Message handling time in seconds",
			Buckets: defaultBuckets,
		}, []string{"message_type"}),

		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gensrv_messages_total",
			Help: "Total number of messages processed",
		}, []string{"message_type", "success"}),

		panicsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gensrv_panics_total",
			Help: "Total number of recovered callback panics",
		}, []string{"message_type"}),

		mailboxDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gensrv_mailbox_depth",
			Help: "Current mailbox queue depth",
		}, []string{"server_id"}),
	}

	reg.MustRegister(
		m.messageDuration,
		m.messagesTotal,
		m.panicsTotal,
		m.mailboxDepth,
	)

	return m
}

func (m *serverMetrics) MessageDuration(msgType string) metrics.Timer {
	return newTimer(m.messageDuration.WithLabelValues(msgType))
}

func (m *serverMetrics) MessageProcessed(msgType string, success bool) {
	m.messagesTotal.WithLabelValues(msgType, boolToStr(success)).Inc()
}

func (m *serverMetrics) Panics(msgType string) metrics.Counter {
	return m.panicsTotal.WithLabelValues(msgType)
}

func (m *serverMetrics) MailboxDepth(serverID string) metrics.Gauge {
	return m.mailboxDepth.WithLabelValues(serverID)
}

var _ genserver.Metrics = (*serverMetrics)(nil)
