// Package metrics provides Prometheus metrics for the lead routing engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LeadTransitionsTotal counts lead status changes.
	LeadTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leadrouter",
			Subsystem: "leads",
			Name:      "transitions_total",
			Help:      "Total number of lead status transitions",
		},
		[]string{"from", "to"},
	)

	// ChargesTotal counts charge gateway outcomes for lead acceptance.
	ChargesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leadrouter",
			Subsystem: "payments",
			Name:      "charges_total",
			Help:      "Total number of lead charges by gateway outcome",
		},
		[]string{"outcome"},
	)

	// ReassignmentsTotal counts reassignment attempts by channel and result.
	ReassignmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leadrouter",
			Subsystem: "routing",
			Name:      "reassignments_total",
			Help:      "Total number of lead reassignments by channel and result",
		},
		[]string{"channel", "result"},
	)

	// SweepDuration tracks fallback sweep duration in seconds.
	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "leadrouter",
			Subsystem: "routing",
			Name:      "fallback_sweep_duration_seconds",
			Help:      "Duration of fallback sweep runs in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	// NotificationsTotal counts notification deliveries by template and result.
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leadrouter",
			Subsystem: "notifications",
			Name:      "sent_total",
			Help:      "Total number of notification sends by template and result",
		},
		[]string{"template", "result"},
	)
)

// Reassignment channels.
const (
	ChannelAlternative = "alternative"
	ChannelFallback    = "fallback"
)

// RecordTransition is a shorthand for LeadTransitionsTotal.
func RecordTransition(from, to string) {
	LeadTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordCharge is a shorthand for ChargesTotal.
func RecordCharge(outcome string) {
	ChargesTotal.WithLabelValues(outcome).Inc()
}

// RecordReassignment is a shorthand for ReassignmentsTotal.
func RecordReassignment(channel, result string) {
	ReassignmentsTotal.WithLabelValues(channel, result).Inc()
}

// RecordNotification is a shorthand for NotificationsTotal.
func RecordNotification(template string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	NotificationsTotal.WithLabelValues(template, result).Inc()
}
