package charging

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/model"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/infra/roadnet"
)

// testNetwork is a straight road of nodes 0..10 spaced ~685 m apart with a
// short spur 3 <-> 20 and an isolated node 30. Every edge takes 25 s.
func testNetwork(t *testing.T) *roadnet.Network {
	t.Helper()
	b := roadnet.NewBuilder()
	for i := 0; i <= 10; i++ {
		require.NoError(t, b.AddNode(model.NodeID(i), model.GeoPoint{Latitude: 52, Longitude: 13 + 0.01*float64(i)}, 0))
	}
	require.NoError(t, b.AddNode(20, model.GeoPoint{Latitude: 52.0005, Longitude: 13.03}, 0))
	require.NoError(t, b.AddNode(30, model.GeoPoint{Latitude: 53, Longitude: 14}, 0))
	for i := 0; i < 10; i++ {
		require.NoError(t, b.AddRoad(model.NodeID(i), model.NodeID(i+1), 685, 25))
	}
	require.NoError(t, b.AddRoad(3, 20, 56, 25))
	n, err := b.Build()
	require.NoError(t, err)
	return n
}

func park(n *roadnet.Network, node model.NodeID, kw float64) model.ChargingPark {
	return model.ChargingPark{
		ExternalID: int64(node),
		Name:       "park",
		Location:   n.Location(node),
		Node:       node,
		Connectors: []model.ChargingConnector{{Type: "CCS", RatedPowerKW: kw, CurrentType: "DC"}},
	}
}

func testCatalog(n *roadnet.Network) *Catalog {
	return NewCatalog([]model.ChargingPark{
		park(n, 2, 50),   // 0
		park(n, 3, 150),  // 1
		park(n, 4, 150),  // 2
		park(n, 5, 22),   // 3
		park(n, 20, 150), // 4
		park(n, 9, 50),   // 5
		park(n, 30, 30),  // 6
	})
}

func testVehicle(t *testing.T) model.Vehicle {
	t.Helper()
	v, err := model.NewVehicle("flat", 50, "10,15:200,15")
	require.NoError(t, err)
	return v
}

func TestFindNearby(t *testing.T) {
	n := testNetwork(t)
	c := testCatalog(n)
	origin := n.Location(0)
	assert.Equal(t, []model.ParkID{0, 1, 4}, c.FindNearby(origin, 3, 100))
	assert.Equal(t, []model.ParkID{0}, c.FindNearby(origin, 3, 1.5))
	assert.Nil(t, c.FindNearby(origin, 0, 100))
	assert.Len(t, c.FindNearby(origin, 100, 1000), 7)
}

func TestSelectBestPrefersLowestScore(t *testing.T) {
	n := testNetwork(t)
	s := NewSelector(testCatalog(n), n, 10, 1)
	bl := Blacklist{}
	c, ok := s.SelectBest(testVehicle(t), n.Location(3), 0, 10, bl, 0)
	require.True(t, ok)
	assert.Equal(t, model.ParkID(1), c.Park)
	assert.Equal(t, 150.0, c.PowerKW)
	assert.Equal(t, 250.0, c.Score)
	assert.True(t, bl.Contains(0), "weaker park is blacklisted")
	assert.True(t, bl.Contains(1), "winner among several is blacklisted")
	assert.False(t, bl.Contains(2))
	assert.False(t, bl.Contains(4))
}

func TestSelectBestStrictImprovementBlacklistsPrevious(t *testing.T) {
	n := testNetwork(t)
	s := NewSelector(testCatalog(n), n, 10, 1)
	bl := Blacklist{}
	c, ok := s.SelectBest(testVehicle(t), n.Location(2), 0, 10, bl, 0)
	require.True(t, ok)
	assert.Equal(t, model.ParkID(1), c.Park)
	assert.True(t, bl.Contains(0))
}

func TestSelectBestSingleCandidate(t *testing.T) {
	n := testNetwork(t)
	s := NewSelector(testCatalog(n), n, 10, 1)
	bl := Blacklist{}
	c, ok := s.SelectBest(testVehicle(t), n.Location(9), 0, 10, bl, 0)
	require.True(t, ok)
	assert.Equal(t, model.ParkID(5), c.Park)
	assert.Equal(t, 250.0, c.Score)
	assert.Empty(t, bl, "single candidate stays available")

	bl.Add(5)
	c, ok = s.SelectBest(testVehicle(t), n.Location(9), 0, 10, bl, 0)
	assert.False(t, ok)
	assert.Equal(t, math.MaxFloat64, c.Score)
}

func TestSelectBestBelowCurrentBest(t *testing.T) {
	n := testNetwork(t)
	s := NewSelector(testCatalog(n), n, 10, 1)
	bl := Blacklist{}
	_, ok := s.SelectBest(testVehicle(t), n.Location(9), 0, 10, bl, 100)
	assert.False(t, ok)
	assert.True(t, bl.Contains(5))
}

func TestRate(t *testing.T) {
	n := testNetwork(t)
	s := NewSelector(testCatalog(n), n, 0, 0)
	v := testVehicle(t)
	v.CurrentSoCKWh = 5.5
	v.MinSoCAtChargingStopKWh = 5
	assert.Equal(t, 250.0, s.Rate(v, 1, 0, 10))
	assert.True(t, math.IsInf(s.Rate(v, 5, 0, 10), 1), "reserve violated")
	assert.True(t, math.IsInf(s.Rate(v, 6, 0, 10), 1), "unreachable")
}

func TestSelectBestTieGoesToClosestPark(t *testing.T) {
	n := testNetwork(t)
	far := park(n, 5, 150)
	far.Location = n.Location(6)
	near := park(n, 5, 150)
	s := NewSelector(NewCatalog([]model.ChargingPark{far, near}), n, 10, 1)

	c, ok := s.SelectBest(testVehicle(t), n.Location(5), 0, 10, Blacklist{}, 0)
	require.True(t, ok)
	assert.Equal(t, model.ParkID(1), c.Park, "equal power and score, the closer park wins")
}
