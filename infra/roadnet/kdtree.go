package roadnet

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/model"
)

// spherePoint is a node projected onto the unit sphere. Squared chord lengths
// order points the same way great-circle distances do.
type spherePoint struct {
	id  model.NodeID
	xyz [3]float64
}

func newSpherePoint(id model.NodeID, p model.GeoPoint) spherePoint {
	lat := p.Latitude * math.Pi / 180
	lon := p.Longitude * math.Pi / 180
	return spherePoint{id: id, xyz: [3]float64{
		math.Cos(lat) * math.Cos(lon),
		math.Cos(lat) * math.Sin(lon),
		math.Sin(lat),
	}}
}

func (p spherePoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(spherePoint)
	return p.xyz[d] - q.xyz[d]
}

func (p spherePoint) Dims() int { return 3 }

func (p spherePoint) Distance(c kdtree.Comparable) float64 {
	q := c.(spherePoint)
	var sum float64
	for i := range p.xyz {
		d := p.xyz[i] - q.xyz[i]
		sum += d * d
	}
	return sum
}

// chordToMeters converts a squared unit chord into a surface distance.
func chordToMeters(sq float64) float64 {
	chord := math.Sqrt(sq)
	return 2 * math.Asin(math.Min(1, chord/2)) * model.EarthRadiusKm * 1000
}

type spherePoints []spherePoint

func (p spherePoints) Index(i int) kdtree.Comparable        { return p[i] }
func (p spherePoints) Len() int                              { return len(p) }
func (p spherePoints) Pivot(d kdtree.Dim) int                { return plane{spherePoints: p, Dim: d}.Pivot() }
func (p spherePoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// plane sorts points along one dimension for median partitioning.
type plane struct {
	kdtree.Dim
	spherePoints
}

func (p plane) Less(i, j int) bool {
	return p.spherePoints[i].xyz[p.Dim] < p.spherePoints[j].xyz[p.Dim]
}

func (p plane) Swap(i, j int) {
	p.spherePoints[i], p.spherePoints[j] = p.spherePoints[j], p.spherePoints[i]
}

func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.spherePoints = p.spherePoints[start:end]
	return p
}
