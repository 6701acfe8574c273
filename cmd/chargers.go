package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/charging"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/model"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/pkg/export"
)

var chargersOpts struct {
	at       string
	k        int
	radiusKm float64
}

var chargersCmd = &cobra.Command{
	Use:   "chargers",
	Short: "List the charging parks closest to a coordinate",
	RunE:  runChargers,
}

func init() {
	f := chargersCmd.Flags()
	f.StringVar(&chargersOpts.at, "at", "", "coordinate lat,lon")
	f.IntVarP(&chargersOpts.k, "k", "k", charging.DefaultSearchK, "maximum number of parks")
	f.Float64Var(&chargersOpts.radiusKm, "radius", charging.DefaultSearchRadiusKm, "search radius in km")
	_ = chargersCmd.MarkFlagRequired("at")
	rootCmd.AddCommand(chargersCmd)
}

func runChargers(cmd *cobra.Command, args []string) error {
	at, err := model.ParseGeoPoint(chargersOpts.at)
	if err != nil {
		return err
	}
	_, svc, err := loadService()
	if err != nil {
		return err
	}
	defer closeService(svc)

	cat := svc.Catalog()
	docs := export.NewChargerDocs(cat, at, cat.FindNearby(at, chargersOpts.k, chargersOpts.radiusKm))
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(docs)
}
