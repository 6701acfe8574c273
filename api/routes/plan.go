// Package routes exposes route planning, the route log and the charger
// search over HTTP.
package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/model"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/network"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/pkg/export"
)

// ChannelHTTP tags requests served by this package.
const ChannelHTTP = "http"

// maxRequestBytes bounds the size of a route request body.
const maxRequestBytes = 1 << 20

// Planner plans route requests.
type Planner interface {
	PlanRequest(ctx context.Context, req model.RouteRequest, channel string) (export.Document, error)
}

// NewPlanHandler returns an HTTP handler planning routes via POST /api/routes.
func NewPlanHandler(p Planner) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req model.RouteRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid request: "+err.Error(), http.StatusBadRequest)
			return
		}
		doc, err := p.PlanRequest(r.Context(), req, ChannelHTTP)
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		writeJSON(w, doc)
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidRequest),
		errors.Is(err, model.ErrInvalidVehicle),
		errors.Is(err, network.ErrNoNodeNearby):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
