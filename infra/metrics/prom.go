package metrics

import (
	"strconv"

	coremetrics "github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records planning activity in Prometheus metrics.
type PromSink struct {
	routes   *prometheus.CounterVec
	stops    *prometheus.HistogramVec
	charging *prometheus.HistogramVec
	parks    *prometheus.CounterVec
	catalog  *prometheus.GaugeVec
}

// NewPromSink registers route metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	routes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "route_requests_total",
		Help: "Total number of planned routes",
	}, []string{"channel", "fail"})
	stops := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "route_charge_stops",
		Help:    "Charging stops per planned route",
		Buckets: prometheus.LinearBuckets(0, 1, 8),
	}, []string{"channel"})
	charging := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "charge_stop_duration_seconds",
		Help:    "Charging time per stop",
		Buckets: prometheus.LinearBuckets(0, 300, 12),
	}, []string{"connector"})
	parks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "charge_stop_park_total",
		Help: "Charging stops per park",
	}, []string{"park_id"})
	catalog := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "charger_catalog_parks",
		Help: "Charging parks read from the catalog",
	}, []string{"state"})

	var err error
	if routes, err = register(reg, routes); err != nil {
		return nil, err
	}
	if stops, err = register(reg, stops); err != nil {
		return nil, err
	}
	if charging, err = register(reg, charging); err != nil {
		return nil, err
	}
	if parks, err = register(reg, parks); err != nil {
		return nil, err
	}
	if catalog, err = register(reg, catalog); err != nil {
		return nil, err
	}
	return &PromSink{routes: routes, stops: stops, charging: charging, parks: parks, catalog: catalog}, nil
}

// register reuses an already registered collector of the same type.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRoute counts the route and observes its number of stops.
func (s *PromSink) RecordRoute(ev coremetrics.RouteEvent) error {
	s.routes.WithLabelValues(ev.Channel, strconv.FormatBool(ev.Fail)).Inc()
	if !ev.Fail {
		s.stops.WithLabelValues(ev.Channel).Observe(float64(ev.Stops))
	}
	return nil
}

// RecordChargeStop observes the charging time and counts the park.
func (s *PromSink) RecordChargeStop(ev coremetrics.ChargeStopEvent) error {
	s.charging.WithLabelValues(ev.ConnectorType).Observe(float64(ev.ChargingTimeSec))
	s.parks.WithLabelValues(strconv.FormatInt(ev.ParkID, 10)).Inc()
	return nil
}

// RecordCatalogLoad sets the catalog gauges.
func (s *PromSink) RecordCatalogLoad(ev coremetrics.CatalogLoadEvent) error {
	s.catalog.WithLabelValues("loaded").Set(float64(ev.Loaded))
	s.catalog.WithLabelValues("skipped").Set(float64(ev.Skipped))
	return nil
}
