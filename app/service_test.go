package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/config"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/model"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/network"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/routelog"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/pkg/export"
)

// testConfig writes a straight east-west highway of eleven nodes 0.1 degrees
// apart, each edge driven as 20 km in 720 s, and a 50 kW park at node 5.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	var nodes, edges strings.Builder
	nodes.WriteString("id,latitude,longitude\n")
	edges.WriteString("tail,head,length_m,travel_time_s\n")
	for i := 0; i <= 10; i++ {
		fmt.Fprintf(&nodes, "%d,0,%.1f\n", i, 0.1*float64(i))
		if i < 10 {
			fmt.Fprintf(&edges, "%d,%d,20000,720\n%d,%d,20000,720\n", i, i+1, i+1, i)
		}
	}
	write := func(name, data string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(data), 0o600))
		return p
	}
	reserve := 4.0
	cfg := &config.Config{
		Network: config.NetworkConfig{
			Nodes: write("nodes.csv", nodes.String()),
			Edges: write("edges.csv", edges.String()),
		},
		Chargers: config.ChargersConfig{
			Path: write("chargers.csv", "id,name,entry_lat,entry_lon,lat,lon,kws,types,currentTypes\n"+
				"7,Hub,0,0.5,0,0.5,50|11,CCS|Type2,DC|AC\n"+
				"8,Nowhere,40,40,40,40,150,CCS,DC\n"),
		},
		Vehicle: model.VehicleProfile{
			Model:                   "test",
			MaxCapacityKWh:          40,
			Consumption:             "10,20:200,20",
			MinSoCAtDestinationKWh:  &reserve,
			MinSoCAtChargingStopKWh: &reserve,
			ChargingCurve:           []model.ChargingPoint{{SoCKWh: 0, PowerKW: 50}, {SoCKWh: 40, PowerKW: 50}},
		},
		RouteLog: config.RouteLogConfig{Backend: "jsonl", Path: filepath.Join(dir, "routes.jsonl")},
	}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func newService(t *testing.T) *Service {
	t.Helper()
	svc, err := New(testConfig(t))
	require.NoError(t, err)
	return svc
}

var trip = model.RouteRequest{
	From: model.GeoPoint{Latitude: 0, Longitude: 0.001},
	To:   model.GeoPoint{Latitude: 0, Longitude: 1.0},
}

func TestNewLoadsData(t *testing.T) {
	svc := newService(t)
	defer func() { require.NoError(t, svc.Close()) }()

	assert.Equal(t, 11, svc.Network().NodeCount())
	assert.Equal(t, 1, svc.Catalog().Len())
	assert.Equal(t, model.NodeID(5), svc.Catalog().Park(0).Node)
	assert.Equal(t, 1, svc.loaded.Skipped)
	assert.Equal(t, "test", svc.Vehicle().Model)
}

func TestPlanRouteRecordsRoute(t *testing.T) {
	svc := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	req := trip
	req.RequestID = "req-1"
	route, err := svc.PlanRoute(ctx, req, ChannelCLI)
	require.NoError(t, err)
	require.False(t, route.Fail)
	require.Len(t, route.ChargeEvents, 1)
	require.Len(t, route.Legs, 2)

	var recs []routelog.Record
	require.Eventually(t, func() bool {
		recs, err = svc.store.Query(ctx, routelog.Query{})
		return err == nil && len(recs) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "req-1", recs[0].RequestID)
	assert.Equal(t, ChannelCLI, recs[0].Channel)
	assert.Equal(t, []int64{7}, recs[0].Parks)

	require.NoError(t, svc.Close())
}

func TestPlanRouteErrors(t *testing.T) {
	svc := newService(t)
	defer func() { require.NoError(t, svc.Close()) }()
	ctx := context.Background()

	_, err := svc.PlanRoute(ctx, model.RouteRequest{From: model.GeoPoint{Latitude: 95}}, ChannelCLI)
	assert.ErrorIs(t, err, model.ErrInvalidRequest)

	far := trip
	far.To = model.GeoPoint{Latitude: 10, Longitude: 10}
	_, err = svc.PlanRoute(ctx, far, ChannelCLI)
	assert.ErrorIs(t, err, network.ErrNoNodeNearby)

	bad := trip
	bad.Vehicle = &model.VehicleProfile{Model: "x", MaxCapacityKWh: 0, Consumption: "10,20"}
	_, err = svc.PlanRoute(ctx, bad, ChannelCLI)
	assert.ErrorIs(t, err, model.ErrInvalidVehicle)
}

func TestHandleMQTT(t *testing.T) {
	svc := newService(t)
	defer func() { require.NoError(t, svc.Close()) }()

	req := trip
	req.RequestID = "m1"
	resp, err := svc.HandleMQTT(context.Background(), req)
	require.NoError(t, err)
	b, err := json.Marshal(resp)
	require.NoError(t, err)

	var out struct {
		RequestID string `json:"request_id"`
		export.Document
	}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "m1", out.RequestID)
	require.Len(t, out.Routes, 1)
	assert.Len(t, out.Routes[0].Legs, 2)
}

func TestHTTPPlan(t *testing.T) {
	svc := newService(t)
	defer func() { require.NoError(t, svc.Close()) }()
	srv := httptest.NewServer(svc.Handler())
	defer srv.Close()

	body, err := json.Marshal(trip)
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+"/api/routes", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc export.Document
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	require.Len(t, doc.Routes, 1)
	rd := doc.Routes[0]
	assert.False(t, rd.Fail)
	require.Len(t, rd.Legs, 2)
	require.NotNil(t, rd.Legs[0].Summary)
	assert.Equal(t, "Hub", rd.Legs[0].Summary.ChargingInformation.ParkName)
	assert.Equal(t, "CCS", rd.Legs[0].Summary.ChargingConnectionInfo.Type)
	assert.Equal(t, 200000, rd.Summary.LengthMeters)
}

func TestNewFailsOnMissingFiles(t *testing.T) {
	cfg := testConfig(t)
	cfg.Network.Nodes = filepath.Join(t.TempDir(), "missing.csv")
	_, err := New(cfg)
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Chargers.Path = filepath.Join(t.TempDir(), "missing.csv")
	_, err = New(cfg)
	assert.Error(t, err)
}
