package planner

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/logger"
)

// Planner states.
const (
	StatePlanning         = "planning"
	StateDrivingDirect    = "driving_direct"
	StateSearchingCharger = "searching_charger"
	StateDrivingToCharger = "driving_to_charger"
	StateCharging         = "charging"
	StateDone             = "done"
	StateFailed           = "failed"
)

// Planner events.
const (
	EventReachable    = "reachable"
	EventArrive       = "arrive"
	EventNeedCharge   = "need_charge"
	EventChargerFound = "charger_found"
	EventPlugIn       = "plug_in"
	EventResume       = "resume"
	EventFail         = "fail"
)

// runState tracks the progress of one planning run.
type runState struct {
	fsm *fsm.FSM
}

func newRunState(log logger.Logger) *runState {
	f := fsm.NewFSM(
		StatePlanning,
		fsm.Events{
			{Name: EventReachable, Src: []string{StatePlanning}, Dst: StateDrivingDirect},
			{Name: EventArrive, Src: []string{StateDrivingDirect}, Dst: StateDone},
			{Name: EventNeedCharge, Src: []string{StatePlanning}, Dst: StateSearchingCharger},
			{Name: EventChargerFound, Src: []string{StateSearchingCharger}, Dst: StateDrivingToCharger},
			{Name: EventPlugIn, Src: []string{StateDrivingToCharger}, Dst: StateCharging},
			{Name: EventResume, Src: []string{StateCharging}, Dst: StatePlanning},
			{Name: EventFail, Src: []string{StatePlanning, StateSearchingCharger, StateDrivingToCharger, StateCharging}, Dst: StateFailed},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				stateTransitions.WithLabelValues(e.Dst).Inc()
				log.Debugw("planner state", map[string]any{"from": e.Src, "to": e.Dst, "event": e.Event})
			},
		},
	)
	return &runState{fsm: f}
}

// fire triggers an event. Cancellation is handled by the planner loop, so the
// transition itself always runs to completion.
func (r *runState) fire(event string) error {
	if err := r.fsm.Event(context.Background(), event); err != nil {
		return fmt.Errorf("planner transition %s from %s: %w", event, r.fsm.Current(), err)
	}
	return nil
}

func (r *runState) current() string { return r.fsm.Current() }
