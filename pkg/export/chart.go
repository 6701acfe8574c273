package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/model"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/network"
)

// ProfilePoint is the state of charge after DistanceKm driven kilometers.
type ProfilePoint struct {
	DistanceKm float64
	SoCKWh     float64
}

// SoCProfile replays r for v and returns the charge along the route. v
// carries the charge at departure. Every charging stop adds a second point
// at the same distance holding the charge after the session.
func SoCProfile(g network.Graph, v model.Vehicle, r *model.Route) []ProfilePoint {
	soc := v.CurrentSoCKWh
	var km float64
	points := []ProfilePoint{{SoCKWh: soc}}
	for i, leg := range r.Legs {
		trace := network.Simulate(g, v, soc, leg)
		for j, id := range leg {
			km += g.Edge(id).LengthMeters / 1000
			points = append(points, ProfilePoint{DistanceKm: km, SoCKWh: trace.SoC[j+1]})
		}
		soc = trace.Arrival()
		if i < len(r.ChargeEvents) {
			soc = r.ChargeEvents[i].TargetChargeKWh
			points = append(points, ProfilePoint{DistanceKm: km, SoCKWh: soc})
		}
	}
	return points
}

// WriteSoCChart renders points as a standalone HTML line chart.
func WriteSoCChart(w io.Writer, title string, points []ProfilePoint) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: "km"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "kWh"}),
	)

	xAxis := make([]string, 0, len(points))
	yAxis := make([]opts.LineData, 0, len(points))
	for _, p := range points {
		xAxis = append(xAxis, fmt.Sprintf("%.1f", p.DistanceKm))
		yAxis = append(yAxis, opts.LineData{Value: p.SoCKWh})
	}
	line.SetXAxis(xAxis).AddSeries("State of charge", yAxis)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
