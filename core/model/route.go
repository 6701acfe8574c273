package model

// ChargeEvent records one charging stop between two legs.
type ChargeEvent struct {
	Park      ParkID
	Connector ChargingConnector

	ChargingTimeSec             int
	RemainingChargeAtArrivalKWh float64
	TargetChargeKWh             float64

	// Stats of the leg that ends at this stop.
	LengthMeters          float64
	TravelTimeSec         float64
	BatteryConsumptionKWh float64
}

// Route is the result of one planning run.
//
// Legs are separated by charge events, so a successful route always holds
// exactly len(Legs)-1 events. A failed route stops at the last stop reached.
type Route struct {
	Legs         [][]EdgeID
	ChargeEvents []ChargeEvent

	LengthMeters                float64
	TravelTimeSec               float64
	BatteryConsumptionKWh       float64
	RemainingChargeAtArrivalKWh float64
	TotalChargingTimeSec        float64
	Fail                        bool
}

// Stops returns the number of charging stops on the route.
func (r *Route) Stops() int { return len(r.ChargeEvents) }
