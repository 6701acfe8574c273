package events

import (
	"time"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/model"
)

// RoutePlanned is published after each planning run. Parks holds the park of
// each charge event in the same order.
type RoutePlanned struct {
	RequestID string
	// Channel is the entry point: "http", "mqtt" or "cli".
	Channel  string
	Vehicle  string
	Source   model.NodeID
	Target   model.NodeID
	Route    *model.Route
	Parks    []model.ChargingPark
	Duration time.Duration
	Time     time.Time
}

// CatalogLoaded is published when the charger catalog has been read.
type CatalogLoaded struct {
	Source  string
	Loaded  int
	Skipped int
}
