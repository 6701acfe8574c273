package config

import (
	"fmt"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/factory"
)

// RouteLogConfig defines settings for the planned route log and its rotation.
type RouteLogConfig struct {
	// Backend selects the log store type: "jsonl", "sqlite" or "nop".
	Backend string `json:"backend"`
	// Path is the file location of the log store.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *RouteLogConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		switch c.Backend {
		case "sqlite":
			c.Path = "routes.db"
		default:
			c.Path = "routes.jsonl"
		}
	}
}

// Validate checks mandatory fields.
func (c RouteLogConfig) Validate() error {
	switch c.Backend {
	case "jsonl", "sqlite", "nop":
	default:
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

// Module converts the settings into a routelog factory configuration.
func (c RouteLogConfig) Module() factory.ModuleConfig {
	conf := map[string]any{"path": c.Path}
	if c.MaxSizeMB > 0 {
		conf["max_size_mb"] = c.MaxSizeMB
	}
	if c.MaxBackups > 0 {
		conf["max_backups"] = c.MaxBackups
	}
	if c.MaxAgeDays > 0 {
		conf["max_age_days"] = c.MaxAgeDays
	}
	return factory.ModuleConfig{Type: c.Backend, Conf: conf}
}
