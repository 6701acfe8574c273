// Package config loads the service configuration from a yaml or json file
// with environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/metrics"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/model"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/planner"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/infra/chargers"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/infra/logger"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/infra/monitoring"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/infra/mqtt"
)

type Config struct {
	Network  NetworkConfig        `json:"network"`
	Chargers ChargersConfig       `json:"chargers"`
	Vehicle  model.VehicleProfile `json:"vehicle"`
	Planner  planner.Config       `json:"planner"`
	Metrics  metrics.Config       `json:"metrics"`
	Logging  logger.Config        `json:"logging"`
	RouteLog RouteLogConfig       `json:"route_log"`
	MQTT     mqtt.Config          `json:"mqtt"`
	Server   ServerConfig         `json:"server"`
	Sentry   monitoring.Config    `json:"sentry"`
}

// NetworkConfig points to the road network files.
type NetworkConfig struct {
	Nodes string `json:"nodes"`
	Edges string `json:"edges"`
	// SnapRadiusMeters bounds coordinate snapping of trip endpoints.
	SnapRadiusMeters float64 `json:"snap_radius_m"`
}

// ChargersConfig points to the charging park catalog.
type ChargersConfig struct {
	Path             string  `json:"path"`
	MinPowerKW       float64 `json:"min_power_kw"`
	SnapRadiusMeters float64 `json:"snap_radius_m"`
}

// Options returns the loader options of the catalog.
func (c ChargersConfig) Options() chargers.Options {
	return chargers.Options{MinPowerKW: c.MinPowerKW, SnapRadiusMeters: c.SnapRadiusMeters}
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults completes every section.
func (c *Config) SetDefaults() {
	if c.Network.SnapRadiusMeters <= 0 {
		c.Network.SnapRadiusMeters = chargers.DefaultSnapRadiusMeters
	}
	if c.Vehicle.Model == "" && c.Vehicle.MaxCapacityKWh == 0 {
		c.Vehicle = model.TeslaModel3LR()
	}
	c.Planner.SetDefaults()
	c.RouteLog.SetDefaults()
	c.MQTT.SetDefaults()
	c.Server.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if c.Network.Nodes == "" || c.Network.Edges == "" {
		return fmt.Errorf("network.nodes and network.edges are required")
	}
	if c.Chargers.Path == "" {
		return fmt.Errorf("chargers.path is required")
	}
	if c.Chargers.MinPowerKW < 0 {
		return fmt.Errorf("chargers.min_power_kw must not be negative")
	}
	if _, err := c.Vehicle.Build(); err != nil {
		return err
	}
	if err := c.Planner.Validate(); err != nil {
		return fmt.Errorf("planner: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if err := c.RouteLog.Validate(); err != nil {
		return fmt.Errorf("route_log: %w", err)
	}
	if err := c.MQTT.Validate(); err != nil {
		return err
	}
	return c.Server.Validate()
}
