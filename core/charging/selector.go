package charging

import (
	"math"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/model"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/network"
)

const (
	// DefaultSearchK is the number of nearest parks considered per location.
	DefaultSearchK = 10
	// DefaultSearchRadiusKm bounds the park search around a location.
	DefaultSearchRadiusKm = 10.0
)

// Blacklist holds parks excluded from further searches within one planning run.
type Blacklist map[model.ParkID]struct{}

// Add excludes id from future searches.
func (b Blacklist) Add(id model.ParkID) { b[id] = struct{}{} }

// Contains reports whether id is excluded.
func (b Blacklist) Contains(id model.ParkID) bool {
	_, ok := b[id]
	return ok
}

// Candidate is a park proposed for a charging stop.
type Candidate struct {
	Park    model.ParkID
	PowerKW float64
	// Score is the travel time source -> park -> target in seconds.
	Score float64
}

// Selector picks charging parks around a position of a route.
type Selector struct {
	catalog  *Catalog
	graph    network.Graph
	k        int
	radiusKm float64
}

// NewSelector creates a selector. Non-positive k or radius fall back to the defaults.
func NewSelector(catalog *Catalog, graph network.Graph, k int, radiusKm float64) *Selector {
	if k <= 0 {
		k = DefaultSearchK
	}
	if radiusKm <= 0 {
		radiusKm = DefaultSearchRadiusKm
	}
	return &Selector{catalog: catalog, graph: graph, k: k, radiusKm: radiusKm}
}

// Catalog returns the catalog the selector searches.
func (s *Selector) Catalog() *Catalog { return s.catalog }

// SelectBest returns the best park around loc for a trip source -> target.
//
// Parks weaker than currentBestKW are blacklisted and skipped, only the
// strongest parks around loc are kept, and the one with the lowest score
// wins. When several parks compete the winner is blacklisted as well. The
// boolean is false when no park qualifies. Parks tied on power and score
// resolve to the one closest to loc, since FindNearby returns them by distance.
func (s *Selector) SelectBest(v model.Vehicle, loc model.GeoPoint, source, target model.NodeID, blacklist Blacklist, currentBestKW float64) (Candidate, bool) {
	var best []model.ParkID
	bestKW := currentBestKW
	for _, id := range s.catalog.FindNearby(loc, s.k, s.radiusKm) {
		if blacklist.Contains(id) {
			continue
		}
		kw := s.catalog.Park(id).BestPowerKW()
		if kw < bestKW {
			blacklist.Add(id)
			continue
		}
		switch {
		case len(best) == 0:
			best = append(best, id)
			bestKW = kw
		case kw > bestKW:
			for _, prev := range best {
				blacklist.Add(prev)
			}
			best = append(best[:0], id)
			bestKW = kw
		case kw == bestKW:
			best = append(best, id)
		}
	}
	if len(best) == 0 {
		return Candidate{Score: math.MaxFloat64}, false
	}
	winner := Candidate{Park: best[0], PowerKW: bestKW, Score: s.Rate(v, best[0], source, target)}
	if len(best) == 1 {
		return winner, true
	}
	for _, id := range best[1:] {
		if score := s.Rate(v, id, source, target); score < winner.Score {
			winner.Park, winner.Score = id, score
		}
	}
	blacklist.Add(winner.Park)
	return winner, true
}

// Rate returns the travel time source -> park -> target. It is +Inf when the
// park cannot be reached, or only with less than the vehicle's charging stop
// reserve, starting from the vehicle's current charge.
func (s *Selector) Rate(v model.Vehicle, id model.ParkID, source, target model.NodeID) float64 {
	park := s.catalog.Park(id)
	first, ok := s.graph.ShortestPath(source, park.Node)
	if !ok {
		return math.Inf(1)
	}
	toPark := network.Simulate(s.graph, v, v.CurrentSoCKWh, first)
	if toPark.Arrival() < v.MinSoCAtChargingStopKWh {
		return math.Inf(1)
	}
	second, ok := s.graph.ShortestPath(park.Node, target)
	if !ok {
		return math.Inf(1)
	}
	return toPark.TravelTimeSec + network.Simulate(s.graph, v, v.CurrentSoCKWh, second).TravelTimeSec
}
