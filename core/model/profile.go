package model

import "fmt"

// VehicleProfile is the serializable description of a vehicle as found in
// configuration files and API requests. Zero values fall back to the defaults
// applied by NewVehicle. The reserves are pointers so that an explicit 0 is
// kept while an absent key still gets the default.
type VehicleProfile struct {
	Model                   string          `json:"model"`
	MaxCapacityKWh          float64         `json:"max_capacity_kwh"`
	Consumption             string          `json:"consumption"`
	ChargingCurve           []ChargingPoint `json:"charging_curve"`
	CurrentSoCKWh           float64         `json:"current_soc_kwh"`
	MinSoCAtDestinationKWh  *float64        `json:"min_soc_at_destination_kwh"`
	MinSoCAtChargingStopKWh *float64        `json:"min_soc_at_charging_stop_kwh"`
	MaxChargingTimeSec      int             `json:"max_charging_time_sec"`
	ChargingTimeOffsetSec   int             `json:"charging_time_offset_sec"`
	MassKg                  float64         `json:"mass_kg"`
	MaxSpeedKmh             float64         `json:"max_speed_kmh"`
}

// Build turns the profile into a Vehicle.
func (p VehicleProfile) Build() (Vehicle, error) {
	v, err := NewVehicle(p.Model, p.MaxCapacityKWh, p.Consumption)
	if err != nil {
		return Vehicle{}, fmt.Errorf("vehicle %q: %w", p.Model, err)
	}
	if p.CurrentSoCKWh > 0 {
		v.CurrentSoCKWh = p.CurrentSoCKWh
	}
	if p.MinSoCAtDestinationKWh != nil {
		v.MinSoCAtDestinationKWh = *p.MinSoCAtDestinationKWh
	}
	if p.MinSoCAtChargingStopKWh != nil {
		v.MinSoCAtChargingStopKWh = *p.MinSoCAtChargingStopKWh
	}
	if p.MaxChargingTimeSec > 0 {
		v.MaxChargingTimeSec = p.MaxChargingTimeSec
	}
	if p.ChargingTimeOffsetSec > 0 {
		v.ChargingTimeOffsetSec = p.ChargingTimeOffsetSec
	}
	v.MassKg = p.MassKg
	v.MaxSpeedKmh = p.MaxSpeedKmh
	if len(p.ChargingCurve) > 0 {
		if err := v.SetChargingCurve(p.ChargingCurve); err != nil {
			return Vehicle{}, fmt.Errorf("vehicle %q: %w", p.Model, err)
		}
	}
	if err := v.Validate(); err != nil {
		return Vehicle{}, fmt.Errorf("vehicle %q: %w", p.Model, err)
	}
	if v.MinSoCAtDestinationKWh < 0 || v.MinSoCAtChargingStopKWh < 0 {
		return Vehicle{}, fmt.Errorf("vehicle %q: %w: reserves must not be negative", p.Model, ErrInvalidVehicle)
	}
	if v.CurrentSoCKWh > v.MaxCapacityKWh {
		return Vehicle{}, fmt.Errorf("vehicle %q: %w: current charge exceeds capacity", p.Model, ErrInvalidVehicle)
	}
	return v, nil
}

// TeslaModel3LR returns the reference long range sedan profile.
func TeslaModel3LR() VehicleProfile {
	return VehicleProfile{
		Model:          "Tesla Model 3 LR",
		MaxCapacityKWh: 70,
		Consumption:    "10,10.7:50,10.7:80,13.3:120,16.3",
		MassKg:         2019,
		ChargingCurve: []ChargingPoint{
			{7.0, 190}, {7.7, 187}, {8.4, 182}, {9.1, 175}, {9.8, 170}, {10.5, 166}, {11.2, 162},
			{11.9, 159}, {12.6, 156}, {14.0, 150}, {14.7, 148}, {15.4, 147}, {16.1, 145}, {16.8, 144},
			{18.9, 138}, {19.6, 136}, {21.7, 131}, {22.4, 128}, {23.1, 126}, {23.8, 124}, {24.5, 122},
			{25.2, 120}, {25.9, 118}, {26.6, 116}, {28.7, 109}, {30.8, 102}, {31.5, 99}, {32.2, 97},
			{32.9, 95}, {33.6, 92}, {34.3, 90}, {35.0, 88}, {35.7, 86}, {36.4, 85}, {37.1, 83},
			{37.8, 81}, {38.5, 79}, {39.2, 77}, {39.9, 75}, {40.6, 72}, {41.3, 70}, {42.0, 69},
			{42.7, 67}, {43.4, 66}, {44.1, 64}, {44.8, 64}, {46.9, 60}, {50.4, 56}, {51.1, 54},
			{53.9, 50}, {56.7, 45}, {59.5, 40},
		},
	}
}
