package planner

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	routesPlanned    *prometheus.CounterVec
	planDuration     prometheus.Histogram
	chargeStops      prometheus.Histogram
	stateTransitions *prometheus.CounterVec
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, prometheus.Histogram, prometheus.Histogram, *prometheus.CounterVec) {
	routes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evroute_routes_planned_total",
			Help: "Number of planning runs by result",
		},
		[]string{"result"},
	)
	dur := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evroute_plan_duration_seconds",
			Help:    "Wall clock time of a planning run",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
	)
	stops := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evroute_charge_stops",
			Help:    "Charging stops per planned route",
			Buckets: prometheus.LinearBuckets(0, 1, 8),
		},
	)
	states := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evroute_planner_state_transitions_total",
			Help: "Planner state machine transitions by target state",
		},
		[]string{"state"},
	)
	return routes, dur, stops, states
}

func init() {
	routesPlanned, planDuration, chargeStops, stateTransitions = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers planner metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(routesPlanned, planDuration, chargeStops, stateTransitions)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	routesPlanned, planDuration, chargeStops, stateTransitions = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
