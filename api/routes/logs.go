package routes

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/routelog"
)

// NewLogHandler returns an HTTP handler exposing planned routes via GET /api/routes/logs.
// Requests must include an Authorization header with "Bearer <token>" when token is non-empty.
func NewLogHandler(store routelog.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		q := routelog.Query{}
		if s := r.URL.Query().Get("start"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.Start = t
			}
		}
		if s := r.URL.Query().Get("end"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.End = t
			}
		}
		q.Vehicle = r.URL.Query().Get("vehicle")
		if s := r.URL.Query().Get("fail"); s != "" {
			if b, err := strconv.ParseBool(s); err == nil {
				q.Fail = &b
			}
		}
		if s := r.URL.Query().Get("limit"); s != "" {
			if n, err := strconv.Atoi(s); err == nil && n > 0 {
				q.Limit = n
			}
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []routelog.Record{}
		}
		writeJSON(w, records)
	})
}
