// Package export renders planned routes for clients: a JSON document shaped
// like the TomTom long distance EV routing response and a CSV list of the
// charging stops.
package export

import (
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/charging"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/model"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/network"
)

// Document is the top level response.
type Document struct {
	Routes []RouteDoc `json:"routes"`
}

// RouteDoc describes one planned route.
type RouteDoc struct {
	Fail    bool         `json:"fail,omitempty"`
	Legs    []LegDoc     `json:"legs"`
	Summary RouteSummary `json:"summary"`
}

// LegDoc is the polyline of one leg. Every leg except the last ends at a
// charging stop described by Summary.
type LegDoc struct {
	Points  []model.GeoPoint `json:"points"`
	Summary *StopSummary     `json:"summary,omitempty"`
}

// RouteSummary holds the route totals. Lengths and durations are truncated
// to whole units.
type RouteSummary struct {
	BatteryConsumptionKWh       float64 `json:"batteryConsumptionInkWh"`
	LengthMeters                int     `json:"lengthInMeters"`
	TravelTimeSec               int     `json:"travelTimeInSeconds"`
	RemainingChargeAtArrivalKWh float64 `json:"remainingChargeAtArrivalInkWh"`
	TotalChargingTimeSec        int     `json:"totalChargingTimeInSeconds"`
}

// StopSummary describes the leg ending at a charging stop.
type StopSummary struct {
	LengthMeters           float64                 `json:"lengthInMeters"`
	TravelTimeSec          float64                 `json:"travelTimeInSeconds"`
	BatteryConsumptionKWh  float64                 `json:"batteryConsumptionInkWh"`
	ChargingInformation    ChargingInformation     `json:"chargingInformationAtEndOfLeg"`
	ChargingConnectionInfo model.ChargingConnector `json:"chargingConnectionInfo"`
}

// ChargingInformation merges the charging session with the park it happens at.
type ChargingInformation struct {
	ChargingTimeSec             int                       `json:"chargingTimeInSeconds"`
	RemainingChargeAtArrivalKWh float64                   `json:"remainingChargeAtArrivalInkWh"`
	TargetChargeKWh             float64                   `json:"targetChargeInkWh"`
	ChargingConnectionInfo      model.ChargingConnector   `json:"chargingConnectionInfo"`
	ParkName                    string                    `json:"chargingParkName"`
	ParkExternalID              int64                     `json:"chargingParkExternalId"`
	ParkLocation                model.GeoPoint            `json:"chargingParkLocation"`
	RatedPowerKW                float64                   `json:"ratedPowerKw"`
	Connectors                  []model.ChargingConnector `json:"connectors"`
}

// NewDocument renders r. The graph resolves edge geometry and the catalog
// the parks referenced by charge events.
func NewDocument(g network.Graph, cat *charging.Catalog, r *model.Route) Document {
	return Document{Routes: []RouteDoc{NewRouteDoc(g, cat, r)}}
}

// NewRouteDoc renders a single route.
func NewRouteDoc(g network.Graph, cat *charging.Catalog, r *model.Route) RouteDoc {
	doc := RouteDoc{
		Fail: r.Fail,
		Legs: make([]LegDoc, 0, len(r.Legs)),
		Summary: RouteSummary{
			BatteryConsumptionKWh:       r.BatteryConsumptionKWh,
			LengthMeters:                int(r.LengthMeters),
			TravelTimeSec:               int(r.TravelTimeSec),
			RemainingChargeAtArrivalKWh: r.RemainingChargeAtArrivalKWh,
			TotalChargingTimeSec:        int(r.TotalChargingTimeSec),
		},
	}
	for i, leg := range r.Legs {
		ld := LegDoc{Points: legPoints(g, leg)}
		if i < len(r.ChargeEvents) {
			s := stopSummary(cat, r.ChargeEvents[i])
			ld.Summary = &s
		}
		doc.Legs = append(doc.Legs, ld)
	}
	return doc
}

// legPoints lists the tail of every edge followed by the head of the last.
func legPoints(g network.Graph, leg []model.EdgeID) []model.GeoPoint {
	pts := make([]model.GeoPoint, 0, len(leg)+1)
	for _, id := range leg {
		pts = append(pts, g.Location(g.Edge(id).Tail))
	}
	if len(leg) > 0 {
		pts = append(pts, g.Location(g.Edge(leg[len(leg)-1]).Head))
	}
	return pts
}

func stopSummary(cat *charging.Catalog, ev model.ChargeEvent) StopSummary {
	park := cat.Park(ev.Park)
	return StopSummary{
		LengthMeters:          ev.LengthMeters,
		TravelTimeSec:         ev.TravelTimeSec,
		BatteryConsumptionKWh: ev.BatteryConsumptionKWh,
		ChargingInformation: ChargingInformation{
			ChargingTimeSec:             ev.ChargingTimeSec,
			RemainingChargeAtArrivalKWh: ev.RemainingChargeAtArrivalKWh,
			TargetChargeKWh:             ev.TargetChargeKWh,
			ChargingConnectionInfo:      ev.Connector,
			ParkName:                    park.Name,
			ParkExternalID:              park.ExternalID,
			ParkLocation:                park.Location,
			RatedPowerKW:                park.BestPowerKW(),
			Connectors:                  park.Connectors,
		},
		ChargingConnectionInfo: ev.Connector,
	}
}
