package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the bridge's pipeline metrics
type Metrics struct {
	MessagesReceived *prometheus.CounterVec
	MessageOutcomes  *prometheus.CounterVec
	LookupDuration   *prometheus.HistogramVec
	PublishDuration  prometheus.Histogram
}

// NewMetrics creates the metrics and registers them on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		MessagesReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "telemetry_bridge",
				Subsystem: "messages",
				Name:      "received_total",
				Help:      "Total number of MQTT messages received, by topic type segment",
			},
			[]string{"type"},
		),

		MessageOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "telemetry_bridge",
				Subsystem: "messages",
				Name:      "outcome_total",
				Help:      "Total number of handled messages, by pipeline outcome",
			},
			[]string{"outcome"},
		),

		LookupDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "telemetry_bridge",
				Subsystem: "lookup",
				Name:      "duration_seconds",
				Help:      "Metadata lookup duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"entity"},
		),

		PublishDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "telemetry_bridge",
				Subsystem: "publish",
				Name:      "duration_seconds",
				Help:      "AMQP publish duration in seconds, including channel setup and exchange declare",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}

	reg.MustRegister(m.MessagesReceived, m.MessageOutcomes, m.LookupDuration, m.PublishDuration)
	return m
}

// RecordReceived counts an inbound message
func (m *Metrics) RecordReceived(typeSegment string) {
	m.MessagesReceived.WithLabelValues(typeSegment).Inc()
}

// RecordOutcome counts a finished message
func (m *Metrics) RecordOutcome(outcome string) {
	m.MessageOutcomes.WithLabelValues(outcome).Inc()
}

// ObserveLookup records how long a lookup of entity took
func (m *Metrics) ObserveLookup(entity string, started time.Time) {
	m.LookupDuration.WithLabelValues(entity).Observe(time.Since(started).Seconds())
}

// ObservePublish records how long a publish took
func (m *Metrics) ObservePublish(started time.Time) {
	m.PublishDuration.Observe(time.Since(started).Seconds())
}
