package model

// ParkID is the index of a charging park inside a loaded catalog.
type ParkID int

// ChargingConnector is a single plug of a charging park.
type ChargingConnector struct {
	Type         string  `json:"connectorType"`
	RatedPowerKW float64 `json:"ratedPowerKW"`
	CurrentType  string  `json:"currentType"`
}

// ChargingPark is a charging location snapped to the road network.
type ChargingPark struct {
	ExternalID int64
	Name       string
	Location   GeoPoint
	Node       NodeID
	Connectors []ChargingConnector
}

// BestConnector returns the connector with the highest rated power.
// Ties keep the first connector seen.
func (p ChargingPark) BestConnector() ChargingConnector {
	if len(p.Connectors) == 0 {
		return ChargingConnector{}
	}
	best := p.Connectors[0]
	for _, c := range p.Connectors[1:] {
		if c.RatedPowerKW > best.RatedPowerKW {
			best = c
		}
	}
	return best
}

// BestPowerKW returns the rated power of the best connector.
func (p ChargingPark) BestPowerKW() float64 {
	return p.BestConnector().RatedPowerKW
}
