package routelog

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/events"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/factory"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/model"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/internal/eventbus"
)

func sampleRecords(base time.Time) []Record {
	return []Record{
		{Timestamp: base, RequestID: "a", Vehicle: "tesla", Stops: 1},
		{Timestamp: base.Add(time.Minute), RequestID: "b", Vehicle: "zoe", Fail: true},
		{Timestamp: base.Add(2 * time.Minute), RequestID: "c", Vehicle: "tesla"},
	}
}

func ids(recs []Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.RequestID
	}
	return out
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	for _, r := range sampleRecords(base) {
		require.NoError(t, store.Append(ctx, r))
	}

	all, err := store.Query(ctx, Query{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids(all))

	tesla, err := store.Query(ctx, Query{Vehicle: "tesla"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids(tesla))

	fail := true
	failed, err := store.Query(ctx, Query{Fail: &fail})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(failed))

	window, err := store.Query(ctx, Query{Start: base.Add(30 * time.Second), End: base.Add(90 * time.Second)})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(window))

	last, err := store.Query(ctx, Query{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, ids(last))
}

func TestSQLiteStore_PersistQuery(t *testing.T) {
	store, err := NewSQLiteStore("file:routes_test.db?mode=memory&cache=shared")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	exerciseStore(t, store)
}

func TestSQLiteStoreKeepsEveryField(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "routes.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	rec := Record{
		Timestamp:       time.Date(2024, 5, 1, 8, 0, 0, 123, time.UTC),
		RequestID:       "r-1",
		Channel:         "mqtt",
		Vehicle:         "Tesla Model 3 LR",
		Source:          3,
		Target:          9,
		Stops:           2,
		Parks:           []int64{17, 42},
		LengthMeters:    512000.5,
		TravelTimeSec:   21000,
		ChargingTimeSec: 2400,
		ConsumptionKWh:  80.25,
		RemainingKWh:    12.5,
		DurationMs:      3.75,
	}
	require.NoError(t, store.Append(context.Background(), rec))
	got, err := store.Query(context.Background(), Query{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec, got[0])
}

func TestRotatingJSONLStore_PersistQuery(t *testing.T) {
	store, err := NewRotatingJSONLStore(filepath.Join(t.TempDir(), "logs", "routes.jsonl"), 1, 2, 1)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	exerciseStore(t, store)
}

func TestRotatingJSONLStore_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.jsonl")
	store, err := NewRotatingJSONLStore(path, 1, 2, 1)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	rec := Record{Timestamp: time.Now(), Parks: make([]int64, 4096)}
	for i := 0; i < 200; i++ {
		require.NoError(t, store.Append(context.Background(), rec))
	}
	files, _ := filepath.Glob(store.pattern())
	assert.Greater(t, len(files), 1, "expected rotated files")

	recs, err := store.Query(context.Background(), Query{})
	require.NoError(t, err)
	assert.Len(t, recs, 200)
}

func TestRecord_JSON(t *testing.T) {
	data, err := json.Marshal(Record{Timestamp: time.Unix(0, 0), Parks: []int64{1}})
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, k := range []string{"timestamp", "request_id", "vehicle", "stops", "parks", "fail", "length_m"} {
		assert.Contains(t, m, k)
	}
}

func TestNewRecordFromEvent(t *testing.T) {
	rec := NewRecord(events.RoutePlanned{
		RequestID: "r1",
		Channel:   "cli",
		Vehicle:   "tesla",
		Source:    3,
		Target:    9,
		Route: &model.Route{
			ChargeEvents:         []model.ChargeEvent{{}},
			LengthMeters:         1000,
			TotalChargingTimeSec: 600,
		},
		Parks:    []model.ChargingPark{{ExternalID: 55}},
		Duration: 2500 * time.Microsecond,
	})
	assert.Equal(t, 1, rec.Stops)
	assert.Equal(t, []int64{55}, rec.Parks)
	assert.Equal(t, 600.0, rec.ChargingTimeSec)
	assert.Equal(t, 2.5, rec.DurationMs)
	assert.Equal(t, model.NodeID(9), rec.Target)
	assert.False(t, rec.Timestamp.IsZero())
}

func TestNewStoreFactory(t *testing.T) {
	s, err := NewStore(factory.ModuleConfig{})
	require.NoError(t, err)
	assert.IsType(t, NopStore{}, s)

	s, err = NewStore(factory.ModuleConfig{Type: "jsonl", Conf: map[string]any{"path": filepath.Join(t.TempDir(), "r.jsonl")}})
	require.NoError(t, err)
	assert.IsType(t, &RotatingJSONLStore{}, s)
	require.NoError(t, s.Close())

	_, err = NewStore(factory.ModuleConfig{Type: "missing"})
	assert.Error(t, err)
}

func TestRecorderAppendsRoutes(t *testing.T) {
	store, err := NewSQLiteStore("file:recorder_test.db?mode=memory&cache=shared")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	bus := eventbus.New()
	done := StartRecorder(context.Background(), bus, store, nil)
	bus.Publish(events.CatalogLoaded{Loaded: 1})
	bus.Publish(events.RoutePlanned{RequestID: "r1", Vehicle: "tesla", Route: &model.Route{}})

	require.Eventually(t, func() bool {
		recs, err := store.Query(context.Background(), Query{})
		return err == nil && len(recs) == 1
	}, time.Second, 10*time.Millisecond)
	bus.Close()
	<-done
}
