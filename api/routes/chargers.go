package routes

import (
	"net/http"
	"strconv"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/charging"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/model"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/pkg/export"
)

// NewChargersHandler returns an HTTP handler listing charging parks near a
// coordinate via GET /api/chargers/nearby?at=lat,lon[&k=10&radius_km=10].
func NewChargersHandler(cat *charging.Catalog) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		at, err := model.ParseGeoPoint(r.URL.Query().Get("at"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		k := charging.DefaultSearchK
		if s := r.URL.Query().Get("k"); s != "" {
			if k, err = strconv.Atoi(s); err != nil || k <= 0 {
				http.Error(w, "invalid k", http.StatusBadRequest)
				return
			}
		}
		radius := charging.DefaultSearchRadiusKm
		if s := r.URL.Query().Get("radius_km"); s != "" {
			if radius, err = strconv.ParseFloat(s, 64); err != nil || radius <= 0 {
				http.Error(w, "invalid radius_km", http.StatusBadRequest)
				return
			}
		}
		writeJSON(w, export.NewChargerDocs(cat, at, cat.FindNearby(at, k, radius)))
	})
}
