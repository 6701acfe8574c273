// Package planner computes charging aware routes. A planning run repeatedly
// routes from the current position to the destination, simulates the state
// of charge along the path and, when the vehicle would fall short, walks the
// path backwards to insert the most suitable charging stop.
package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/charging"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/logger"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/model"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/network"
)

// Planner is safe for concurrent use. Each Plan call works on its own copy
// of the vehicle.
type Planner struct {
	graph    network.Graph
	selector *charging.Selector
	cfg      Config
	log      logger.Logger
}

// New creates a planner over graph and catalog. cfg is completed with defaults.
func New(graph network.Graph, catalog *charging.Catalog, cfg Config, log logger.Logger) (*Planner, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("planner config: %w", err)
	}
	return &Planner{
		graph:    graph,
		selector: charging.NewSelector(catalog, graph, cfg.SearchK, cfg.SearchRadiusKm),
		cfg:      cfg,
		log:      logger.OrNop(log),
	}, nil
}

// Selector exposes the charger search used by the planner.
func (p *Planner) Selector() *charging.Selector { return p.selector }

// Graph returns the road network the planner routes on.
func (p *Planner) Graph() network.Graph { return p.graph }

// run holds the mutable state of one planning call.
type run struct {
	p       *Planner
	v       model.Vehicle
	target  model.NodeID
	current model.NodeID
	state   *runState
	route   *model.Route
}

// Plan computes a route source -> target for v. v is taken by value; its
// CurrentSoCKWh is the charge at departure.
//
// An infeasible trip is not an error: the returned route has Fail set and
// holds the legs driven up to the last charging stop. Its remaining charge
// at arrival stays 0 since the destination is never reached. Errors are reserved
// for invalid input and cancellation.
func (p *Planner) Plan(ctx context.Context, v model.Vehicle, source, target model.NodeID) (*model.Route, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if !p.graph.HasNode(source) {
		return nil, fmt.Errorf("source %d: %w", source, network.ErrUnknownNode)
	}
	if !p.graph.HasNode(target) {
		return nil, fmt.Errorf("target %d: %w", target, network.ErrUnknownNode)
	}

	start := time.Now()
	r := &run{
		p:       p,
		v:       v,
		target:  target,
		current: source,
		state:   newRunState(p.log),
		route:   &model.Route{},
	}
	for r.state.current() == StatePlanning {
		if err := ctx.Err(); err != nil {
			routesPlanned.WithLabelValues("canceled").Inc()
			return nil, err
		}
		if err := r.step(); err != nil {
			return nil, err
		}
	}

	elapsed := time.Since(start)
	planDuration.Observe(elapsed.Seconds())
	result := "ok"
	if r.route.Fail {
		result = "fail"
	} else {
		chargeStops.Observe(float64(r.route.Stops()))
	}
	routesPlanned.WithLabelValues(result).Inc()
	p.log.Infof("route %d -> %d planned in %s: stops=%d fail=%t", source, target, elapsed, r.route.Stops(), r.route.Fail)
	return r.route, nil
}

// step runs one iteration from the current position. Standing on the
// target ends the run, whatever the charge left; this covers trips with
// source == target and charging stops placed on the destination.
func (r *run) step() error {
	if r.current == r.target {
		if err := r.state.fire(EventReachable); err != nil {
			return err
		}
		return r.finish(network.Simulate(r.p.graph, r.v, r.v.CurrentSoCKWh, []model.EdgeID{}))
	}
	edges, ok := r.p.graph.ShortestPath(r.current, r.target)
	if !ok {
		r.p.log.Warnf("destination %d unreachable from %d", r.target, r.current)
		return r.fail()
	}
	trace := network.Simulate(r.p.graph, r.v, r.v.CurrentSoCKWh, edges)
	if trace.Arrival() >= r.v.MinSoCAtDestinationKWh {
		if err := r.state.fire(EventReachable); err != nil {
			return err
		}
		return r.finish(trace)
	}

	if r.route.Stops() >= r.p.cfg.MaxStops {
		r.p.log.Warnf("giving up after %d charging stops", r.route.Stops())
		return r.fail()
	}
	if err := r.state.fire(EventNeedCharge); err != nil {
		return err
	}
	best, found := r.backtrack(trace, charging.Blacklist{})
	if !found {
		r.p.log.Debugw("no charging park found", map[string]any{"from": r.current, "soc": r.v.CurrentSoCKWh})
		return r.fail()
	}
	if err := r.state.fire(EventChargerFound); err != nil {
		return err
	}
	return r.chargeAt(best)
}

// backtrack searches for a charging park walking backwards from the first
// position where the charge drops to the stop reserve. The blacklist only
// spans this search.
func (r *run) backtrack(trace network.Trace, blacklist charging.Blacklist) (charging.Candidate, bool) {
	i := len(trace.SoC) - 1
	for j, soc := range trace.SoC {
		if soc <= r.v.MinSoCAtChargingStopKWh {
			i = j
			break
		}
	}

	var (
		best  charging.Candidate
		found bool
	)
	floor := r.p.cfg.BacktrackSoCFraction * r.v.MaxCapacityKWh
	for i >= 0 && (!found || trace.SoC[i] < floor) {
		loc := network.PositionAt(r.p.graph, r.current, trace.Edges, i)
		var currentKW float64
		if found {
			currentKW = best.PowerKW
		}
		c, ok := r.p.selector.SelectBest(r.v, loc, r.current, r.target, blacklist, currentKW)
		if ok && (!found || c.PowerKW > best.PowerKW || (c.PowerKW == best.PowerKW && c.Score < best.Score)) {
			best, found = c, true
		}
		if found && best.PowerKW > r.p.cfg.GoodEnoughPowerKW {
			break
		}
		i--
	}
	return best, found
}

// chargeAt drives to the park of c, charges there and continues from its node.
func (r *run) chargeAt(c charging.Candidate) error {
	park := r.p.selector.Catalog().Park(c.Park)
	edges, ok := r.p.graph.ShortestPath(r.current, park.Node)
	if !ok {
		return r.fail()
	}
	leg := network.Simulate(r.p.graph, r.v, r.v.CurrentSoCKWh, edges)
	arrival := leg.Arrival()
	conn := park.BestConnector()

	goal := r.p.cfg.TargetSoCFraction * r.v.MaxCapacityKWh
	secs := r.v.TimeToReach(conn, arrival, goal)
	if secs < 0 {
		r.p.log.Warnf("cannot charge %s at park %d", r.v.Model, park.ExternalID)
		return r.fail()
	}
	achieved := goal
	switch {
	case secs > r.v.MaxChargingTimeSec:
		secs = r.v.MaxChargingTimeSec
		achieved = r.v.ChargeForDuration(conn, arrival, secs)
	case secs == 0:
		achieved = arrival
	}

	if err := r.state.fire(EventPlugIn); err != nil {
		return err
	}
	socAtStart := r.v.CurrentSoCKWh
	r.route.Legs = append(r.route.Legs, edges)
	r.route.LengthMeters += leg.LengthMeters
	r.route.TravelTimeSec += leg.TravelTimeSec + float64(secs)
	r.route.TotalChargingTimeSec += float64(secs)
	r.route.BatteryConsumptionKWh += socAtStart - arrival
	r.route.ChargeEvents = append(r.route.ChargeEvents, model.ChargeEvent{
		Park:                        c.Park,
		Connector:                   conn,
		ChargingTimeSec:             secs,
		RemainingChargeAtArrivalKWh: arrival,
		TargetChargeKWh:             achieved,
		LengthMeters:                leg.LengthMeters,
		TravelTimeSec:               leg.TravelTimeSec,
		BatteryConsumptionKWh:       socAtStart - arrival,
	})
	r.p.log.Debugw("charging stop", map[string]any{
		"park":     park.ExternalID,
		"power_kw": conn.RatedPowerKW,
		"arrival":  arrival,
		"target":   achieved,
		"seconds":  secs,
	})

	r.v.CurrentSoCKWh = achieved
	r.current = park.Node
	return r.state.fire(EventResume)
}

// finish commits the final leg.
func (r *run) finish(trace network.Trace) error {
	r.route.Legs = append(r.route.Legs, trace.Edges)
	r.route.LengthMeters += trace.LengthMeters
	r.route.TravelTimeSec += trace.TravelTimeSec
	r.route.BatteryConsumptionKWh += r.v.CurrentSoCKWh - trace.Arrival()
	r.route.RemainingChargeAtArrivalKWh = trace.Arrival()
	r.v.CurrentSoCKWh = trace.Arrival()
	r.current = r.target
	return r.state.fire(EventArrive)
}

func (r *run) fail() error {
	r.route.Fail = true
	return r.state.fire(EventFail)
}
