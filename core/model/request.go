package model

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest is returned for route requests that cannot be planned.
var ErrInvalidRequest = errors.New("invalid route request")

// RouteRequest asks for a route between two coordinates. Vehicle replaces
// the configured default vehicle when set.
type RouteRequest struct {
	RequestID string          `json:"request_id,omitempty"`
	From      GeoPoint        `json:"from"`
	To        GeoPoint        `json:"to"`
	Vehicle   *VehicleProfile `json:"vehicle,omitempty"`
}

// Validate checks both endpoints.
func (r RouteRequest) Validate() error {
	if !r.From.Valid() {
		return fmt.Errorf("%w: from %s", ErrInvalidRequest, r.From)
	}
	if !r.To.Valid() {
		return fmt.Errorf("%w: to %s", ErrInvalidRequest, r.To)
	}
	return nil
}
