package planner

import (
	"fmt"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/charging"
)

// Config tunes the charging stop search.
type Config struct {
	// TargetSoCFraction is the share of capacity charged at every stop.
	TargetSoCFraction float64 `json:"target_soc_fraction"`
	// BacktrackSoCFraction keeps the backward search going while the charge
	// at the inspected position is below this share of capacity.
	BacktrackSoCFraction float64 `json:"backtrack_soc_fraction"`
	// GoodEnoughPowerKW stops the backward search once a stronger park is found.
	GoodEnoughPowerKW float64 `json:"good_enough_power_kw"`
	// SearchK and SearchRadiusKm bound the parks inspected per position.
	SearchK        int     `json:"search_k"`
	SearchRadiusKm float64 `json:"search_radius_km"`
	// MaxStops fails a route needing more charging stops.
	MaxStops int `json:"max_stops"`
}

// SetDefaults applies the reference tuning.
func (c *Config) SetDefaults() {
	if c.TargetSoCFraction == 0 {
		c.TargetSoCFraction = 0.8
	}
	if c.BacktrackSoCFraction == 0 {
		c.BacktrackSoCFraction = 0.25
	}
	if c.GoodEnoughPowerKW == 0 {
		c.GoodEnoughPowerKW = 200
	}
	if c.SearchK == 0 {
		c.SearchK = charging.DefaultSearchK
	}
	if c.SearchRadiusKm == 0 {
		c.SearchRadiusKm = charging.DefaultSearchRadiusKm
	}
	if c.MaxStops == 0 {
		c.MaxStops = 64
	}
}

// Validate checks the tuning values.
func (c Config) Validate() error {
	if c.TargetSoCFraction <= 0 || c.TargetSoCFraction > 1 {
		return fmt.Errorf("target_soc_fraction must be in (0,1]")
	}
	if c.BacktrackSoCFraction < 0 || c.BacktrackSoCFraction > 1 {
		return fmt.Errorf("backtrack_soc_fraction must be in [0,1]")
	}
	if c.GoodEnoughPowerKW < 0 {
		return fmt.Errorf("good_enough_power_kw must not be negative")
	}
	if c.SearchK < 0 || c.SearchRadiusKm < 0 {
		return fmt.Errorf("search bounds must not be negative")
	}
	if c.MaxStops < 0 {
		return fmt.Errorf("max_stops must not be negative")
	}
	return nil
}
