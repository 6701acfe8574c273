package metrics

import (
	"errors"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/factory"
	coremetrics "github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/metrics"
)

// InfluxConfig configures the "influx" sink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// DefaultInfluxBucket receives route events when no bucket is configured.
const DefaultInfluxBucket = "evroute"

// Validate requires the server URL.
func (c InfluxConfig) Validate() error {
	if c.URL == "" {
		return errors.New("influx url is required")
	}
	return nil
}

func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})
	_ = coremetrics.RegisterMetricsSink("prometheus", func(map[string]any) (coremetrics.MetricsSink, error) {
		return NewPromSink()
	})
	_ = coremetrics.RegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		c := InfluxConfig{Bucket: DefaultInfluxBucket}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	})
}
