package routes

import (
	"net/http"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/charging"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/routelog"
)

// Register mounts the route API on mux.
func Register(mux *http.ServeMux, p Planner, store routelog.Store, logsToken string, cat *charging.Catalog) {
	mux.Handle("/api/routes", NewPlanHandler(p))
	mux.Handle("/api/routes/logs", NewLogHandler(store, logsToken))
	mux.Handle("/api/chargers/nearby", NewChargersHandler(cat))
}
