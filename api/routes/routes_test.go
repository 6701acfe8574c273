package routes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/charging"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/model"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/network"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/routelog"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/pkg/export"
)

type stubPlanner struct {
	got     model.RouteRequest
	channel string
	err     error
}

func (s *stubPlanner) PlanRequest(_ context.Context, req model.RouteRequest, channel string) (export.Document, error) {
	s.got, s.channel = req, channel
	if s.err != nil {
		return export.Document{}, s.err
	}
	return export.Document{Routes: []export.RouteDoc{{Summary: export.RouteSummary{LengthMeters: 1234}}}}, nil
}

type memStore struct{ recs []routelog.Record }

func (m *memStore) Append(_ context.Context, r routelog.Record) error {
	m.recs = append(m.recs, r)
	return nil
}

func (m *memStore) Query(_ context.Context, q routelog.Query) ([]routelog.Record, error) {
	var res []routelog.Record
	for _, r := range m.recs {
		if q.Matches(r) {
			res = append(res, r)
		}
	}
	return res, nil
}

func (m *memStore) Close() error { return nil }

func TestPlanHandler(t *testing.T) {
	p := &stubPlanner{}
	h := NewPlanHandler(p)

	body := `{"from":{"latitude":48.1,"longitude":11.5},"to":{"latitude":52.5,"longitude":13.4},
		"vehicle":{"model":"x","max_capacity_kwh":50,"consumption":"10,15"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/routes", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	if p.channel != ChannelHTTP || p.got.To.Latitude != 52.5 || p.got.Vehicle == nil || p.got.Vehicle.MaxCapacityKWh != 50 {
		t.Fatalf("unexpected request %+v on %s", p.got, p.channel)
	}
	var doc export.Document
	if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(doc.Routes) != 1 || doc.Routes[0].Summary.LengthMeters != 1234 {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestPlanHandlerErrors(t *testing.T) {
	cases := []struct {
		name   string
		method string
		body   string
		err    error
		want   int
	}{
		{"method", http.MethodGet, "", nil, http.StatusMethodNotAllowed},
		{"body", http.MethodPost, "{", nil, http.StatusBadRequest},
		{"unknown field", http.MethodPost, `{"origin":1}`, nil, http.StatusBadRequest},
		{"invalid request", http.MethodPost, `{}`, fmt.Errorf("%w: from", model.ErrInvalidRequest), http.StatusBadRequest},
		{"no road", http.MethodPost, `{}`, fmt.Errorf("from: %w", network.ErrNoNodeNearby), http.StatusBadRequest},
		{"internal", http.MethodPost, `{}`, errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		h := NewPlanHandler(&stubPlanner{err: c.err})
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(c.method, "/api/routes", strings.NewReader(c.body)))
		if rr.Code != c.want {
			t.Errorf("%s: expected %d got %d", c.name, c.want, rr.Code)
		}
	}
}

func TestLogHandler_AuthAndFilters(t *testing.T) {
	store := &memStore{}
	now := time.Now().UTC()
	for i, v := range []string{"a", "b", "a"} {
		if err := store.Append(context.Background(), routelog.Record{
			Timestamp: now.Add(time.Duration(i) * time.Minute),
			RequestID: fmt.Sprintf("r%d", i),
			Vehicle:   v,
			Fail:      i == 2,
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	h := NewLogHandler(store, "tok")

	get := func(url string) []routelog.Record {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, url, nil)
		req.Header.Set("Authorization", "Bearer tok")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("status %d", rr.Code)
		}
		var out []routelog.Record
		if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return out
	}
	if out := get("/api/routes/logs?vehicle=a"); len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}
	if out := get("/api/routes/logs?vehicle=a&fail=false"); len(out) != 1 || out[0].RequestID != "r0" {
		t.Fatalf("unexpected records %+v", out)
	}
	if out := get("/api/routes/logs?vehicle=z"); out == nil || len(out) != 0 {
		t.Fatalf("expected empty list")
	}

	// unauthorized
	req := httptest.NewRequest(http.MethodGet, "/api/routes/logs", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}

func TestChargersHandler(t *testing.T) {
	cat := charging.NewCatalog([]model.ChargingPark{
		{ExternalID: 1, Name: "near", Location: model.GeoPoint{Latitude: 48, Longitude: 11.01},
			Connectors: []model.ChargingConnector{{Type: "CCS", RatedPowerKW: 150, CurrentType: "DC"}}},
		{ExternalID: 2, Name: "far", Location: model.GeoPoint{Latitude: 49, Longitude: 11}},
	})
	mux := http.NewServeMux()
	Register(mux, &stubPlanner{}, &memStore{}, "", cat)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/chargers/nearby?at=48,11")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var docs []export.ChargerDoc
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(docs) != 1 || docs[0].Name != "near" || docs[0].RatedPowerKW != 150 {
		t.Fatalf("unexpected parks %+v", docs)
	}

	for _, q := range []string{"", "?at=x", "?at=48,11&k=0", "?at=48,11&radius_km=-1"} {
		r, err := http.Get(srv.URL + "/api/chargers/nearby" + q)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		_ = r.Body.Close()
		if r.StatusCode != http.StatusBadRequest {
			t.Errorf("%q: expected 400 got %d", q, r.StatusCode)
		}
	}
}
