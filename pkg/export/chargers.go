package export

import (
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/charging"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/model"
)

// ChargerDoc describes a charging park found near a coordinate.
type ChargerDoc struct {
	ExternalID   int64                     `json:"chargingParkExternalId"`
	Name         string                    `json:"chargingParkName"`
	Location     model.GeoPoint            `json:"chargingParkLocation"`
	DistanceKm   float64                   `json:"distanceInKm"`
	RatedPowerKW float64                   `json:"ratedPowerKw"`
	Connectors   []model.ChargingConnector `json:"connectors"`
}

// NewChargerDocs renders the parks ids of cat as seen from at.
func NewChargerDocs(cat *charging.Catalog, at model.GeoPoint, ids []model.ParkID) []ChargerDoc {
	docs := make([]ChargerDoc, 0, len(ids))
	for _, id := range ids {
		p := cat.Park(id)
		docs = append(docs, ChargerDoc{
			ExternalID:   p.ExternalID,
			Name:         p.Name,
			Location:     p.Location,
			DistanceKm:   at.DistanceKm(p.Location),
			RatedPowerKW: p.BestPowerKW(),
			Connectors:   p.Connectors,
		})
	}
	return docs
}
