package routelog

import (
	"context"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/events"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/logger"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/internal/eventbus"
)

// StartRecorder appends every RoutePlanned event published on bus to store
// until ctx is canceled or the bus is closed. The returned channel is closed
// when the recorder has stopped.
func StartRecorder(ctx context.Context, bus eventbus.EventBus, store Store, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || store == nil {
		close(done)
		return done
	}
	log = logger.OrNop(log)
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
				e, ok := ev.(events.RoutePlanned)
				if !ok {
					continue
				}
				if err := store.Append(ctx, NewRecord(e)); err != nil {
					log.Errorf("append route log %s: %v", e.RequestID, err)
				}
			}
		}
	}()
	return done
}
