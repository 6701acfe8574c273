// Package mqtt defines how route requests received over MQTT reach the
// planning service.
package mqtt

import (
	"context"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/model"
)

// RouteHandler plans req and returns the response document to publish.
type RouteHandler func(ctx context.Context, req model.RouteRequest) (any, error)

// Responder publishes route responses for a request identifier.
type Responder interface {
	PublishResponse(requestID string, payload any) error
}

// ErrorResponse is published when a request cannot be served.
type ErrorResponse struct {
	RequestID string `json:"request_id"`
	Error     string `json:"error"`
}
