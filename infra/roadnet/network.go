// Package roadnet provides an in-memory road network backed by gonum graphs.
// Shortest paths are computed with A* on travel time, using the great-circle
// distance at the fastest speed found in the network as heuristic.
package roadnet

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/model"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/network"
)

type node struct {
	loc        model.GeoPoint
	elevationM float64
}

type arc struct{ from, to model.NodeID }

// Network is an immutable road network. It is safe for concurrent use.
type Network struct {
	nodes    map[model.NodeID]node
	edges    []model.Edge
	fastest  map[arc]model.EdgeID
	g        *simple.WeightedDirectedGraph
	maxSpeed float64 // meters per second
	tree     *kdtree.Tree
}

var (
	_ network.Graph   = (*Network)(nil)
	_ network.Snapper = (*Network)(nil)
)

// Builder assembles a Network. Nodes must be added before the edges using them.
type Builder struct {
	nodes map[model.NodeID]node
	edges []model.Edge
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{nodes: make(map[model.NodeID]node)}
}

// AddNode registers a node with its location and elevation in meters.
func (b *Builder) AddNode(id model.NodeID, loc model.GeoPoint, elevationM float64) error {
	if _, ok := b.nodes[id]; ok {
		return fmt.Errorf("duplicate node %d", id)
	}
	if !loc.Valid() {
		return fmt.Errorf("node %d: invalid location %s", id, loc)
	}
	b.nodes[id] = node{loc: loc, elevationM: elevationM}
	return nil
}

// AddEdge registers a directed edge. The altitude gain is derived from the
// elevations of both end nodes.
func (b *Builder) AddEdge(tail, head model.NodeID, lengthMeters, travelTimeSec float64) (model.EdgeID, error) {
	t, ok := b.nodes[tail]
	if !ok {
		return 0, fmt.Errorf("edge %d->%d: %w %d", tail, head, network.ErrUnknownNode, tail)
	}
	h, ok := b.nodes[head]
	if !ok {
		return 0, fmt.Errorf("edge %d->%d: %w %d", tail, head, network.ErrUnknownNode, head)
	}
	if lengthMeters < 0 || travelTimeSec < 0 {
		return 0, fmt.Errorf("edge %d->%d: negative length or travel time", tail, head)
	}
	id := model.EdgeID(len(b.edges))
	b.edges = append(b.edges, model.Edge{
		Tail:           tail,
		Head:           head,
		LengthMeters:   lengthMeters,
		TravelTimeSec:  travelTimeSec,
		AltitudeGainKm: (h.elevationM - t.elevationM) / 1000,
	})
	return id, nil
}

// AddRoad adds edges in both directions.
func (b *Builder) AddRoad(a, c model.NodeID, lengthMeters, travelTimeSec float64) error {
	if _, err := b.AddEdge(a, c, lengthMeters, travelTimeSec); err != nil {
		return err
	}
	_, err := b.AddEdge(c, a, lengthMeters, travelTimeSec)
	return err
}

// Build freezes the builder into a Network.
func (b *Builder) Build() (*Network, error) {
	if len(b.nodes) == 0 {
		return nil, fmt.Errorf("empty road network")
	}
	n := &Network{
		nodes:   b.nodes,
		edges:   b.edges,
		fastest: make(map[arc]model.EdgeID),
		g:       simple.NewWeightedDirectedGraph(0, math.Inf(1)),
	}
	pts := make(spherePoints, 0, len(b.nodes))
	for id, nd := range b.nodes {
		n.g.AddNode(simple.Node(id))
		pts = append(pts, newSpherePoint(id, nd.loc))
	}
	for i, e := range b.edges {
		if e.Tail == e.Head {
			continue
		}
		if e.TravelTimeSec > 0 {
			n.maxSpeed = math.Max(n.maxSpeed, e.LengthMeters/e.TravelTimeSec)
		}
		key := arc{e.Tail, e.Head}
		if cur, ok := n.fastest[key]; ok && b.edges[cur].TravelTimeSec <= e.TravelTimeSec {
			continue
		}
		n.fastest[key] = model.EdgeID(i)
		n.g.SetWeightedEdge(n.g.NewWeightedEdge(simple.Node(e.Tail), simple.Node(e.Head), e.TravelTimeSec))
	}
	n.tree = kdtree.New(pts, false)
	return n, nil
}

// ShortestPath returns the fastest path between two nodes.
func (n *Network) ShortestPath(from, to model.NodeID) ([]model.EdgeID, bool) {
	if !n.HasNode(from) || !n.HasNode(to) {
		return nil, false
	}
	if from == to {
		return []model.EdgeID{}, true
	}
	sp, _ := path.AStar(simple.Node(from), simple.Node(to), n.g, n.heuristic)
	nodes, weight := sp.To(int64(to))
	if len(nodes) == 0 || math.IsInf(weight, 1) {
		return nil, false
	}
	edges := make([]model.EdgeID, 0, len(nodes)-1)
	for i := 1; i < len(nodes); i++ {
		edges = append(edges, n.fastest[arc{model.NodeID(nodes[i-1].ID()), model.NodeID(nodes[i].ID())}])
	}
	return edges, true
}

func (n *Network) heuristic(x, y graph.Node) float64 {
	if n.maxSpeed <= 0 {
		return 0
	}
	a := n.nodes[model.NodeID(x.ID())].loc
	b := n.nodes[model.NodeID(y.ID())].loc
	return a.DistanceKm(b) * 1000 / n.maxSpeed
}

// Edge returns the edge with the given id.
func (n *Network) Edge(id model.EdgeID) model.Edge {
	return n.edges[id]
}

// Location returns the coordinate of a node.
func (n *Network) Location(id model.NodeID) model.GeoPoint {
	return n.nodes[id].loc
}

// HasNode reports whether id is part of the network.
func (n *Network) HasNode(id model.NodeID) bool {
	_, ok := n.nodes[id]
	return ok
}

// NodeCount returns the number of nodes.
func (n *Network) NodeCount() int { return len(n.nodes) }

// EdgeCount returns the number of edges.
func (n *Network) EdgeCount() int { return len(n.edges) }

// Nearest returns the node closest to p within radiusMeters.
func (n *Network) Nearest(p model.GeoPoint, radiusMeters float64) (model.NodeID, bool) {
	if n.tree == nil || n.tree.Root == nil {
		return 0, false
	}
	c, d := n.tree.Nearest(newSpherePoint(0, p))
	sp, ok := c.(spherePoint)
	if !ok {
		return 0, false
	}
	if chordToMeters(d) > radiusMeters {
		return 0, false
	}
	return sp.id, true
}
