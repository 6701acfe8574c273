package metrics

import (
	"context"
	"time"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/events"
	coremetrics "github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/metrics"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/infra/logger"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for events.
// It stops when the context is canceled or the bus is closed. The returned
// channel is closed once the collector has stopped.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := record(sink, ev); err != nil {
					log.Warnf("record metrics: %v", err)
				}
			}
		}
	}()
	return done
}

func record(sink coremetrics.MetricsSink, ev eventbus.Event) error {
	switch e := ev.(type) {
	case events.RoutePlanned:
		return recordRoute(sink, e)
	case events.CatalogLoaded:
		if r, ok := sink.(coremetrics.CatalogRecorder); ok {
			return r.RecordCatalogLoad(coremetrics.CatalogLoadEvent{
				Loaded:  e.Loaded,
				Skipped: e.Skipped,
				Source:  e.Source,
				Time:    time.Now(),
			})
		}
	}
	return nil
}

func recordRoute(sink coremetrics.MetricsSink, e events.RoutePlanned) error {
	if e.Route == nil {
		return nil
	}
	at := e.Time
	if at.IsZero() {
		at = time.Now()
	}
	r := e.Route
	if err := sink.RecordRoute(coremetrics.RouteEvent{
		RequestID:       e.RequestID,
		Channel:         e.Channel,
		VehicleModel:    e.Vehicle,
		Stops:           r.Stops(),
		LengthMeters:    r.LengthMeters,
		TravelTimeSec:   r.TravelTimeSec,
		ChargingTimeSec: r.TotalChargingTimeSec,
		ConsumptionKWh:  r.BatteryConsumptionKWh,
		RemainingKWh:    r.RemainingChargeAtArrivalKWh,
		Fail:            r.Fail,
		Duration:        e.Duration,
		Time:            at,
	}); err != nil {
		return err
	}
	rec, ok := sink.(coremetrics.ChargeStopRecorder)
	if !ok {
		return nil
	}
	for i, ce := range r.ChargeEvents {
		stop := coremetrics.ChargeStopEvent{
			RequestID:       e.RequestID,
			ConnectorType:   ce.Connector.Type,
			PowerKW:         ce.Connector.RatedPowerKW,
			ArrivalKWh:      ce.RemainingChargeAtArrivalKWh,
			TargetKWh:       ce.TargetChargeKWh,
			ChargingTimeSec: ce.ChargingTimeSec,
			Time:            at,
		}
		if i < len(e.Parks) {
			stop.ParkID = e.Parks[i].ExternalID
			stop.ParkName = e.Parks[i].Name
		}
		if err := rec.RecordChargeStop(stop); err != nil {
			return err
		}
	}
	return nil
}
