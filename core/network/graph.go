// Package network defines the read-only view of the road network used by the
// charger search and the route planner, together with the per-edge state of
// charge simulation shared by both.
package network

import (
	"errors"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/model"
)

var (
	// ErrUnknownNode is returned when a node id is not part of the network.
	ErrUnknownNode = errors.New("unknown node")
	// ErrNoNodeNearby is returned when a coordinate cannot be snapped.
	ErrNoNodeNearby = errors.New("no road network node nearby")
)

// Graph is a shortest path oracle over a loaded road network. Implementations
// must be safe for concurrent use: every ShortestPath call owns its own
// search state.
type Graph interface {
	// ShortestPath returns the edges of the fastest path from -> to. The
	// boolean is false when to cannot be reached. from == to yields an
	// empty path.
	ShortestPath(from, to model.NodeID) ([]model.EdgeID, bool)
	Edge(id model.EdgeID) model.Edge
	Location(n model.NodeID) model.GeoPoint
	HasNode(n model.NodeID) bool
}

// Snapper maps coordinates to the closest network node.
type Snapper interface {
	Nearest(p model.GeoPoint, radiusMeters float64) (model.NodeID, bool)
}

// Trace is the simulated state of charge along a path. SoC[0] is the charge
// at the start and SoC[i+1] the charge after Edges[i].
type Trace struct {
	Edges         []model.EdgeID
	SoC           []float64
	LengthMeters  float64
	TravelTimeSec float64
}

// Arrival returns the simulated charge at the end of the path.
func (t Trace) Arrival() float64 { return t.SoC[len(t.SoC)-1] }

// Simulate drives v along edges starting with soc.
func Simulate(g Graph, v model.Vehicle, soc float64, edges []model.EdgeID) Trace {
	t := Trace{Edges: edges, SoC: make([]float64, 1, len(edges)+1)}
	t.SoC[0] = soc
	for _, id := range edges {
		e := g.Edge(id)
		t.LengthMeters += e.LengthMeters
		t.TravelTimeSec += v.DrivingTime(e)
		soc = v.Drive(soc, e)
		t.SoC = append(t.SoC, soc)
	}
	return t
}

// PositionAt returns the coordinate where the vehicle is after i edges of
// a path starting at start: the tail of edge i, or the head of the last edge
// for i == len(edges). An empty path stays at start.
func PositionAt(g Graph, start model.NodeID, edges []model.EdgeID, i int) model.GeoPoint {
	if len(edges) == 0 {
		return g.Location(start)
	}
	if i >= len(edges) {
		return g.Location(g.Edge(edges[len(edges)-1]).Head)
	}
	if i < 0 {
		i = 0
	}
	return g.Location(g.Edge(edges[i]).Tail)
}
