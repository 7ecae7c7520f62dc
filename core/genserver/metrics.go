package genserver

import "github.com/codewandler/gensrv-go/core/metrics"

// Metrics defines the instrumentation hooks for the server. Message types
// are labelled by their Go type name. All methods must be safe for
// concurrent use.
type Metrics interface {
	// MessageDuration times the handling of one message.
	MessageDuration(msgType string) metrics.Timer
	// MessageProcessed counts handled messages by outcome.
	MessageProcessed(msgType string, success bool)
	// Panics counts recovered callback panics.
	Panics(msgType string) metrics.Counter
	// MailboxDepth gauges the pending-entry count of one server's mailbox.
	MailboxDepth(serverID string) metrics.Gauge
}

// nopMetrics is a no-op implementation of Metrics.
type nopMetrics struct{}

func (nopMetrics) MessageDuration(string) metrics.Timer { return metrics.NopTimer() }
func (nopMetrics) MessageProcessed(string, bool)        {}
func (nopMetrics) Panics(string) metrics.Counter        { return metrics.NopCounter() }
func (nopMetrics) MailboxDepth(string) metrics.Gauge    { return metrics.NopGauge() }

// NopMetrics returns a no-op Metrics implementation.
func NopMetrics() Metrics { return nopMetrics{} }
