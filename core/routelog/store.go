// Package routelog keeps an audit trail of planned routes. Records are
// appended by a bus subscriber and can be queried by time range, vehicle
// model and outcome.
package routelog

import (
	"context"
	"time"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/events"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/model"
)

// Record captures one planning request and its outcome.
type Record struct {
	Timestamp       time.Time    `json:"timestamp"`
	RequestID       string       `json:"request_id"`
	Channel         string       `json:"channel"`
	Vehicle         string       `json:"vehicle"`
	Source          model.NodeID `json:"source"`
	Target          model.NodeID `json:"target"`
	Stops           int          `json:"stops"`
	Parks           []int64      `json:"parks,omitempty"`
	LengthMeters    float64      `json:"length_m"`
	TravelTimeSec   float64      `json:"travel_time_s"`
	ChargingTimeSec float64      `json:"charging_time_s"`
	ConsumptionKWh  float64      `json:"consumption_kwh"`
	RemainingKWh    float64      `json:"remaining_kwh"`
	Fail            bool         `json:"fail"`
	DurationMs      float64      `json:"duration_ms"`
}

// NewRecord builds a record from a planning event.
func NewRecord(ev events.RoutePlanned) Record {
	ts := ev.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	rec := Record{
		Timestamp:  ts.UTC(),
		RequestID:  ev.RequestID,
		Channel:    ev.Channel,
		Vehicle:    ev.Vehicle,
		Source:     ev.Source,
		Target:     ev.Target,
		DurationMs: float64(ev.Duration.Microseconds()) / 1000,
	}
	for _, p := range ev.Parks {
		rec.Parks = append(rec.Parks, p.ExternalID)
	}
	if r := ev.Route; r != nil {
		rec.Stops = r.Stops()
		rec.LengthMeters = r.LengthMeters
		rec.TravelTimeSec = r.TravelTimeSec
		rec.ChargingTimeSec = r.TotalChargingTimeSec
		rec.ConsumptionKWh = r.BatteryConsumptionKWh
		rec.RemainingKWh = r.RemainingChargeAtArrivalKWh
		rec.Fail = r.Fail
	}
	return rec
}

// Query defines filters for retrieving records. Zero values match everything.
type Query struct {
	Start   time.Time
	End     time.Time
	Vehicle string
	Fail    *bool
	// Limit keeps the most recent records when positive.
	Limit int
}

// Matches reports whether rec satisfies the filters of q, Limit aside.
func (q Query) Matches(rec Record) bool {
	if !q.Start.IsZero() && rec.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && rec.Timestamp.After(q.End) {
		return false
	}
	if q.Vehicle != "" && rec.Vehicle != q.Vehicle {
		return false
	}
	if q.Fail != nil && rec.Fail != *q.Fail {
		return false
	}
	return true
}

func (q Query) limit(recs []Record) []Record {
	if q.Limit > 0 && len(recs) > q.Limit {
		return recs[len(recs)-q.Limit:]
	}
	return recs
}

// Store persists records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// NopStore drops every record.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error           { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                   { return nil }
