package metrics

import "time"

// RouteEvent summarizes one planning run.
type RouteEvent struct {
	RequestID       string
	Channel         string
	VehicleModel    string
	Stops           int
	LengthMeters    float64
	TravelTimeSec   float64
	ChargingTimeSec float64
	ConsumptionKWh  float64
	RemainingKWh    float64
	Fail            bool
	Duration        time.Duration
	Time            time.Time
}

// MetricsSink records planned routes for observability purposes.
type MetricsSink interface {
	RecordRoute(ev RouteEvent) error
}

// ChargeStopEvent describes one charging stop of a planned route.
type ChargeStopEvent struct {
	RequestID       string
	ParkID          int64
	ParkName        string
	ConnectorType   string
	PowerKW         float64
	ArrivalKWh      float64
	TargetKWh       float64
	ChargingTimeSec int
	Time            time.Time
}

// ChargeStopRecorder records charging stops.
type ChargeStopRecorder interface {
	RecordChargeStop(ev ChargeStopEvent) error
}

// CatalogLoadEvent captures the outcome of loading the charger catalog.
type CatalogLoadEvent struct {
	Loaded  int
	Skipped int
	Source  string
	Time    time.Time
}

// CatalogRecorder records catalog loads.
type CatalogRecorder interface {
	RecordCatalogLoad(ev CatalogLoadEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordRoute(RouteEvent) error             { return nil }
func (NopSink) RecordChargeStop(ChargeStopEvent) error   { return nil }
func (NopSink) RecordCatalogLoad(CatalogLoadEvent) error { return nil }
