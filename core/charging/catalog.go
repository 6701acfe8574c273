// Package charging holds the charging park catalog and the candidate search
// used by the planner to pick where to insert a charging stop.
package charging

import (
	"sort"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/model"
)

// Catalog stores charging parks by index. It is read-only after creation.
type Catalog struct {
	parks []model.ChargingPark
}

// NewCatalog creates a catalog. Park i is addressed by model.ParkID(i).
func NewCatalog(parks []model.ChargingPark) *Catalog {
	return &Catalog{parks: parks}
}

// Len returns the number of parks.
func (c *Catalog) Len() int { return len(c.parks) }

// Park returns the park with the given id.
func (c *Catalog) Park(id model.ParkID) model.ChargingPark { return c.parks[id] }

type nearby struct {
	id   model.ParkID
	dist float64
}

// FindNearby returns up to k parks within maxDistanceKm of loc, closest first.
func (c *Catalog) FindNearby(loc model.GeoPoint, k int, maxDistanceKm float64) []model.ParkID {
	if k <= 0 {
		return nil
	}
	set := make([]nearby, 0, k+1)
	for i, p := range c.parks {
		d := loc.DistanceKm(p.Location)
		if d > maxDistanceKm {
			continue
		}
		set = append(set, nearby{id: model.ParkID(i), dist: d})
		if len(set) <= k {
			continue
		}
		sort.SliceStable(set, func(a, b int) bool { return set[a].dist < set[b].dist })
		set = set[:k]
	}
	sort.SliceStable(set, func(a, b int) bool { return set[a].dist < set[b].dist })
	ids := make([]model.ParkID, len(set))
	for i, n := range set {
		ids[i] = n.id
	}
	return ids
}
