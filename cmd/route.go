package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/app"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/model"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/pkg/export"
)

var routeOpts struct {
	from, to string
	output   string
	stops    string
	chart    string
	socKWh   float64
}

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Plan a single route and print the route document",
	RunE:  runRoute,
}

func init() {
	f := routeCmd.Flags()
	f.StringVar(&routeOpts.from, "from", "", "start coordinate lat,lon")
	f.StringVar(&routeOpts.to, "to", "", "destination coordinate lat,lon")
	f.StringVarP(&routeOpts.output, "output", "o", "", "write the route document to this file instead of stdout")
	f.StringVar(&routeOpts.stops, "stops-csv", "", "write the charging stops as CSV to this file")
	f.StringVar(&routeOpts.chart, "soc-chart", "", "write an HTML chart of the charge along the route to this file")
	f.Float64Var(&routeOpts.socKWh, "soc", 0, "charge at departure in kWh (default from the vehicle profile)")
	_ = routeCmd.MarkFlagRequired("from")
	_ = routeCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(routeCmd)
}

func runRoute(cmd *cobra.Command, args []string) error {
	from, err := model.ParseGeoPoint(routeOpts.from)
	if err != nil {
		return err
	}
	to, err := model.ParseGeoPoint(routeOpts.to)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, svc, err := loadService()
	if err != nil {
		return err
	}
	defer closeService(svc)
	svc.Start(ctx)

	req := model.RouteRequest{From: from, To: to}
	vehicle := svc.Vehicle()
	if routeOpts.socKWh > 0 {
		profile := cfg.Vehicle
		profile.CurrentSoCKWh = routeOpts.socKWh
		req.Vehicle = &profile
		vehicle.CurrentSoCKWh = routeOpts.socKWh
	}
	route, err := svc.PlanRoute(ctx, req, app.ChannelCLI)
	if err != nil {
		return err
	}

	if err := writeTo(routeOpts.output, cmd.OutOrStdout(), func(w io.Writer) error {
		return export.WriteJSON(w, svc.Document(route))
	}); err != nil {
		return fmt.Errorf("write route: %w", err)
	}
	if routeOpts.stops != "" {
		if err := writeTo(routeOpts.stops, nil, func(w io.Writer) error {
			return export.WriteCSV(w, svc.Catalog(), route)
		}); err != nil {
			return fmt.Errorf("write stops: %w", err)
		}
	}
	if routeOpts.chart != "" {
		title := fmt.Sprintf("%s %s -> %s", vehicle.Model, from, to)
		if err := writeTo(routeOpts.chart, nil, func(w io.Writer) error {
			return export.WriteSoCChart(w, title, export.SoCProfile(svc.Network(), vehicle, route))
		}); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
	}
	if route.Fail {
		cmd.PrintErrln("no feasible route found")
	}
	return nil
}

// writeTo writes to path, or to fallback when path is empty.
func writeTo(path string, fallback io.Writer, write func(io.Writer) error) error {
	if path == "" {
		return write(fallback)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
