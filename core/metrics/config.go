package metrics

import (
	"fmt"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/factory"
)

// Config selects the sinks receiving planning events.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks" yaml:"sinks"`
	// PrometheusAddr exposes /metrics when set, e.g. ":9100".
	PrometheusAddr string `json:"prometheus_addr" yaml:"prometheus_addr"`
}

// Validate rejects sinks without a type.
func (c Config) Validate() error {
	for i, s := range c.Sinks {
		if s.Type == "" {
			return fmt.Errorf("metrics sink %d: type is required", i)
		}
	}
	return nil
}
