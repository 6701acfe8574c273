package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/charging"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/model"
)

// WriteJSON writes the route document to w.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteCSV writes one row per charging stop of r to w.
func WriteCSV(w io.Writer, cat *charging.Catalog, r *model.Route) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"stop", "park_id", "park_name", "latitude", "longitude",
		"connector_type", "power_kw", "arrival_kwh", "target_kwh", "charging_time_s",
	}); err != nil {
		return err
	}
	for i, ev := range r.ChargeEvents {
		park := cat.Park(ev.Park)
		rec := []string{
			strconv.Itoa(i + 1),
			strconv.FormatInt(park.ExternalID, 10),
			park.Name,
			formatFloat(park.Location.Latitude),
			formatFloat(park.Location.Longitude),
			ev.Connector.Type,
			formatFloat(ev.Connector.RatedPowerKW),
			formatFloat(ev.RemainingChargeAtArrivalKWh),
			formatFloat(ev.TargetChargeKWh),
			strconv.Itoa(ev.ChargingTimeSec),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
