package metrics

import (
	"fmt"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/factory"
)

var sinks = factory.NewRegistry[MetricsSink]()

// RegisterMetricsSink makes a sink type available to configuration.
func RegisterMetricsSink(name string, f factory.Factory[MetricsSink]) error {
	return sinks.Register(name, f)
}

// SinkTypes lists the registered sink types.
func SinkTypes() []string { return sinks.Names() }

// NewMetricsSink builds the configured sinks. Without configuration the
// planner records nothing; several sinks are combined in a MultiSink. Sinks
// already built are closed when a later one fails.
func NewMetricsSink(cfgs []factory.ModuleConfig) (MetricsSink, error) {
	switch len(cfgs) {
	case 0:
		return NopSink{}, nil
	case 1:
		return sinks.Create(cfgs[0])
	}
	multi := NewMultiSink()
	for i, c := range cfgs {
		s, err := sinks.Create(c)
		if err != nil {
			_ = multi.Close()
			return nil, fmt.Errorf("metrics sink %d: %w", i, err)
		}
		multi.Sinks = append(multi.Sinks, s)
	}
	return multi, nil
}
