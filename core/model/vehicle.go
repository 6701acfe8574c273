package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/interp"
)

// ErrInvalidVehicle is returned when a vehicle definition cannot be used for planning.
var ErrInvalidVehicle = errors.New("invalid vehicle")

const (
	// DefaultChargingTimeOffsetSec is the setup time spent at every stop before energy flows.
	DefaultChargingTimeOffsetSec = 120
	// DefaultMaxChargingTimeSec caps the time spent at a single stop.
	DefaultMaxChargingTimeSec = 20 * 60

	chargeStepSec          = 30
	gravity                = 9.81
	uphillEfficiency       = 0.85
	recuperationEfficiency = 0.9
)

// ConsumptionPoint maps a constant speed to the energy used per 100 km.
type ConsumptionPoint struct {
	SpeedKmh    float64 `json:"speed_kmh"`
	KWhPer100Km float64 `json:"kwh_per_100km"`
}

// ChargingPoint maps a state of charge to the power the battery accepts.
type ChargingPoint struct {
	SoCKWh  float64 `json:"soc_kwh"`
	PowerKW float64 `json:"power_kw"`
}

// Vehicle holds the static description of an electric vehicle together with
// its simulated state of charge. Vehicles are plain values: a planning run
// works on its own copy and never shares SoC with another run.
type Vehicle struct {
	Model                   string
	MaxCapacityKWh          float64
	CurrentSoCKWh           float64
	MinSoCAtDestinationKWh  float64
	MinSoCAtChargingStopKWh float64
	MaxChargingTimeSec      int
	ChargingTimeOffsetSec   int
	// MassKg enables altitude effects when positive.
	MassKg float64
	// MaxSpeedKmh caps the driving speed on fast edges. Zero means unlimited.
	MaxSpeedKmh      float64
	ConsumptionCurve []ConsumptionPoint

	chargingCurve []ChargingPoint
	chargingFn    *interp.PiecewiseLinear
}

// NewVehicle creates a vehicle from a capacity and a consumption string of the
// form "speed,consumption:speed,consumption". The current charge defaults to
// 80% of capacity, the charging stop reserve to 10% and the destination
// reserve to 20%.
func NewVehicle(model string, maxCapacityKWh float64, consumption string) (Vehicle, error) {
	curve, err := ParseConsumptionCurve(consumption)
	if err != nil {
		return Vehicle{}, err
	}
	v := Vehicle{
		Model:                   model,
		MaxCapacityKWh:          maxCapacityKWh,
		CurrentSoCKWh:           0.8 * maxCapacityKWh,
		MinSoCAtChargingStopKWh: 0.1 * maxCapacityKWh,
		MinSoCAtDestinationKWh:  0.2 * maxCapacityKWh,
		MaxChargingTimeSec:      DefaultMaxChargingTimeSec,
		ChargingTimeOffsetSec:   DefaultChargingTimeOffsetSec,
		ConsumptionCurve:        curve,
	}
	if err := v.Validate(); err != nil {
		return Vehicle{}, err
	}
	return v, nil
}

// ParseConsumptionCurve parses "speed,consumption:speed,consumption".
func ParseConsumptionCurve(s string) ([]ConsumptionPoint, error) {
	var curve []ConsumptionPoint
	for _, entry := range strings.Split(strings.TrimSpace(s), ":") {
		if entry == "" {
			continue
		}
		pair := strings.Split(entry, ",")
		if len(pair) != 2 {
			return nil, fmt.Errorf("%w: malformed consumption entry %q", ErrInvalidVehicle, entry)
		}
		speed, err := strconv.ParseFloat(strings.TrimSpace(pair[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: speed %q: %v", ErrInvalidVehicle, pair[0], err)
		}
		cons, err := strconv.ParseFloat(strings.TrimSpace(pair[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: consumption %q: %v", ErrInvalidVehicle, pair[1], err)
		}
		curve = append(curve, ConsumptionPoint{SpeedKmh: speed, KWhPer100Km: cons})
	}
	if err := validateConsumption(curve); err != nil {
		return nil, err
	}
	return curve, nil
}

func validateConsumption(curve []ConsumptionPoint) error {
	if len(curve) < 2 {
		return fmt.Errorf("%w: consumption curve needs at least 2 points", ErrInvalidVehicle)
	}
	for i := 1; i < len(curve); i++ {
		if curve[i].SpeedKmh <= curve[i-1].SpeedKmh {
			return fmt.Errorf("%w: consumption curve must be strictly ascending by speed", ErrInvalidVehicle)
		}
	}
	return nil
}

// Validate checks the invariants the energy model relies on.
func (v Vehicle) Validate() error {
	if v.MaxCapacityKWh <= 0 {
		return fmt.Errorf("%w: capacity must be positive", ErrInvalidVehicle)
	}
	if v.MassKg < 0 {
		return fmt.Errorf("%w: mass must not be negative", ErrInvalidVehicle)
	}
	if v.MaxChargingTimeSec < 0 || v.ChargingTimeOffsetSec < 0 {
		return fmt.Errorf("%w: charging times must not be negative", ErrInvalidVehicle)
	}
	return validateConsumption(v.ConsumptionCurve)
}

// SetChargingCurve assigns the charging curve. A curve whose first point is
// not at SoC 0 gets a (0, first power) point prepended.
func (v *Vehicle) SetChargingCurve(curve []ChargingPoint) error {
	if len(curve) == 0 {
		return fmt.Errorf("%w: empty charging curve", ErrInvalidVehicle)
	}
	pts := make([]ChargingPoint, 0, len(curve)+1)
	if curve[0].SoCKWh != 0 {
		pts = append(pts, ChargingPoint{SoCKWh: 0, PowerKW: curve[0].PowerKW})
	}
	pts = append(pts, curve...)
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		if i > 0 && p.SoCKWh <= pts[i-1].SoCKWh {
			return fmt.Errorf("%w: charging curve must be strictly ascending by SoC", ErrInvalidVehicle)
		}
		xs[i], ys[i] = p.SoCKWh, p.PowerKW
	}
	v.chargingCurve = pts
	v.chargingFn = nil
	if len(pts) >= 2 {
		var pl interp.PiecewiseLinear
		if err := pl.Fit(xs, ys); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidVehicle, err)
		}
		v.chargingFn = &pl
	}
	return nil
}

// ChargingCurve returns a copy of the normalized charging curve.
func (v Vehicle) ChargingCurve() []ChargingPoint {
	return append([]ChargingPoint(nil), v.chargingCurve...)
}

// HasChargingCurve reports whether charging can be simulated.
func (v Vehicle) HasChargingCurve() bool { return len(v.chargingCurve) > 0 }

// ConsumptionPerKm returns kWh per km at the given speed. Speeds above the last
// breakpoint extrapolate the last segment, speeds below the first extrapolate
// the first one.
func (v Vehicle) ConsumptionPerKm(speedKmh float64) float64 {
	c := v.ConsumptionCurve
	if len(c) < 2 {
		return 0
	}
	i := 0
	for ; i < len(c)-1; i++ {
		if c[i+1].SpeedKmh >= speedKmh {
			break
		}
	}
	if i == len(c)-1 {
		i = len(c) - 2
	}
	x, z := c[i], c[i+1]
	proportion := (speedKmh - x.SpeedKmh) / (z.SpeedKmh - x.SpeedKmh)
	return (x.KWhPer100Km + proportion*(z.KWhPer100Km-x.KWhPer100Km)) / 100
}

// EnergyCost returns the kWh used to drive an edge. The result is negative when
// recuperation on a descent outweighs the driving consumption.
func (v Vehicle) EnergyCost(timeSec, lengthMeters, altitudeGainKm float64) float64 {
	var cost float64
	if lengthMeters > 0 {
		var speed float64
		if timeSec > 0 {
			speed = lengthMeters / timeSec * 3.6
		} else if n := len(v.ConsumptionCurve); n > 0 {
			speed = v.ConsumptionCurve[n-1].SpeedKmh
		}
		cost = v.ConsumptionPerKm(speed) * lengthMeters / 1000
	}
	if altitudeGainKm > 0 {
		cost += altitudeGainKm * v.uphillFactor()
	} else {
		// altitudeGainKm <= 0 here, so descents give energy back.
		cost += altitudeGainKm * v.recuperationFactor()
	}
	return cost
}

// uphillFactor is the extra kWh per km of altitude gained.
func (v Vehicle) uphillFactor() float64 {
	if v.MassKg <= 0 {
		return 0
	}
	return v.MassKg * gravity * 1000 / 3.6e6 / uphillEfficiency
}

// recuperationFactor is the kWh recovered per km of altitude lost.
func (v Vehicle) recuperationFactor() float64 {
	if v.MassKg <= 0 {
		return 0
	}
	return v.MassKg * gravity * 1000 / 3.6e6 * recuperationEfficiency
}

// SoCAfterEdge returns the charge left after driving an edge, capped at the
// battery capacity. The result may be negative.
func (v Vehicle) SoCAfterEdge(soc, timeSec, lengthMeters, altitudeGainKm float64) float64 {
	return math.Min(v.MaxCapacityKWh, soc-v.EnergyCost(timeSec, lengthMeters, altitudeGainKm))
}

// DrivingTime returns the time the vehicle needs for e, honoring MaxSpeedKmh.
func (v Vehicle) DrivingTime(e Edge) float64 {
	if v.MaxSpeedKmh <= 0 || e.LengthMeters <= 0 {
		return e.TravelTimeSec
	}
	capped := e.LengthMeters / (v.MaxSpeedKmh / 3.6)
	return math.Max(e.TravelTimeSec, capped)
}

// Drive returns the charge left after driving e.
func (v Vehicle) Drive(soc float64, e Edge) float64 {
	return v.SoCAfterEdge(soc, v.DrivingTime(e), e.LengthMeters, e.AltitudeGainKm)
}

// ChargingPowerAt returns the power the battery accepts at soc. Values beyond
// the curve are clamped to its end points.
func (v Vehicle) ChargingPowerAt(soc float64) float64 {
	switch {
	case len(v.chargingCurve) == 0:
		return 0
	case v.chargingFn == nil:
		return v.chargingCurve[0].PowerKW
	}
	return v.chargingFn.Predict(soc)
}

// ChargeForDuration returns the charge reached after plugging into conn for
// durationSec seconds, the setup offset included. It returns -1 when the
// vehicle has no charging curve.
func (v Vehicle) ChargeForDuration(conn ChargingConnector, soc float64, durationSec int) float64 {
	if !v.HasChargingCurve() {
		return -1
	}
	if durationSec <= v.ChargingTimeOffsetSec {
		return soc
	}
	remaining := durationSec - v.ChargingTimeOffsetSec
	for remaining > 0 && soc < v.MaxCapacityKWh {
		step := min(remaining, chargeStepSec)
		power := math.Min(conn.RatedPowerKW, v.ChargingPowerAt(soc))
		soc += float64(step) / 3600 * power
		remaining -= step
	}
	return math.Min(soc, v.MaxCapacityKWh)
}

// TimeToReach returns the seconds, setup offset included, needed to charge
// from soc to goal at conn. It returns 0 when soc already meets the goal and
// -1 when the vehicle has no charging curve or the power drops to zero.
func (v Vehicle) TimeToReach(conn ChargingConnector, soc, goal float64) int {
	if !v.HasChargingCurve() {
		return -1
	}
	goal = math.Min(goal, v.MaxCapacityKWh)
	if soc >= goal {
		return 0
	}
	elapsed := v.ChargingTimeOffsetSec
	for soc < goal {
		power := math.Min(conn.RatedPowerKW, v.ChargingPowerAt(soc))
		if power <= 0 {
			return -1
		}
		soc += float64(chargeStepSec) / 3600 * power
		elapsed += chargeStepSec
	}
	return elapsed
}
