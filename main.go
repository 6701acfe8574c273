package main

import (
	"os"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
