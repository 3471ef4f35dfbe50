package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resynotif_checks_total",
			Help: "Availability checks by outcome",
		},
		[]string{"outcome"}, // ok|error
	)

	SlotsFoundTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "resynotif_slots_found_total",
			Help: "Open slots seen across all checks",
		},
	)

	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resynotif_notifications_total",
			Help: "Per-recipient notification decisions by outcome",
		},
		[]string{"outcome"}, // sent|suppressed|failed
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		ChecksTotal,
		SlotsFoundTotal,
		NotificationsTotal,
	)
}
