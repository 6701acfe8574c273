// Package chargers reads charging park catalogs and snaps every park to the
// road network.
package chargers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/logger"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/model"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/network"
)

// DefaultSnapRadiusMeters bounds the distance between a park entrance and
// the node it is attached to.
const DefaultSnapRadiusMeters = 1000

const listSeparator = "|"

// Options tune catalog loading.
type Options struct {
	// MinPowerKW drops parks whose best connector is slower.
	MinPowerKW float64 `json:"min_power_kw"`
	// SnapRadiusMeters defaults to DefaultSnapRadiusMeters.
	SnapRadiusMeters float64 `json:"snap_radius_m"`
}

// SetDefaults fills unset options.
func (o *Options) SetDefaults() {
	if o.SnapRadiusMeters <= 0 {
		o.SnapRadiusMeters = DefaultSnapRadiusMeters
	}
}

// Result is a loaded catalog.
type Result struct {
	Parks   []model.ChargingPark
	Skipped int
}

// columns of the catalog file
const (
	colID = iota
	colName
	colEntryLat
	colEntryLon
	colLat
	colLon
	colPowers
	colTypes
	colCurrents
	numColumns
)

// LoadFile reads a catalog from path.
func LoadFile(path string, snapper network.Snapper, opts Options, log logger.Logger) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open chargers: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f, snapper, opts, log)
}

// Load reads a CSV catalog with the columns
// id,name,entry_lat,entry_lon,lat,lon,kws,types,currentTypes where the last
// three hold one value per connector separated by "|". The first row is a
// header. Rows that cannot be used are counted in Result.Skipped; only a
// malformed CSV stream is an error.
func Load(r io.Reader, snapper network.Snapper, opts Options, log logger.Logger) (Result, error) {
	opts.SetDefaults()
	log = logger.OrNop(log)

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var res Result
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("chargers: %w", err)
		}
		line++
		if line == 1 {
			continue
		}
		park, err := parseRow(rec)
		if err == nil && park.BestPowerKW() < opts.MinPowerKW {
			err = fmt.Errorf("best power %.1f kW below %.1f kW", park.BestPowerKW(), opts.MinPowerKW)
		}
		if err == nil {
			err = snap(&park, rec, snapper, opts.SnapRadiusMeters)
		}
		if err != nil {
			res.Skipped++
			log.Debugw("charging park skipped", map[string]any{"line": line, "reason": err.Error()})
			continue
		}
		res.Parks = append(res.Parks, park)
	}
	log.Infof("loaded %d charging parks, skipped %d", len(res.Parks), res.Skipped)
	return res, nil
}

func parseRow(rec []string) (model.ChargingPark, error) {
	if len(rec) < numColumns {
		return model.ChargingPark{}, fmt.Errorf("expected %d fields, got %d", numColumns, len(rec))
	}
	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}
	if rec[colPowers] == "" || rec[colTypes] == "" || rec[colCurrents] == "" {
		return model.ChargingPark{}, errors.New("missing connector data")
	}
	id, err := strconv.ParseInt(rec[colID], 10, 64)
	if err != nil {
		return model.ChargingPark{}, fmt.Errorf("id: %w", err)
	}
	lat, err := strconv.ParseFloat(rec[colLat], 64)
	if err != nil {
		return model.ChargingPark{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(rec[colLon], 64)
	if err != nil {
		return model.ChargingPark{}, fmt.Errorf("longitude: %w", err)
	}

	powers := strings.Split(rec[colPowers], listSeparator)
	types := strings.Split(rec[colTypes], listSeparator)
	currents := strings.Split(rec[colCurrents], listSeparator)
	if len(powers) != len(types) || len(powers) != len(currents) {
		return model.ChargingPark{}, fmt.Errorf("connector lists differ in length: %d/%d/%d", len(powers), len(types), len(currents))
	}
	conns := make([]model.ChargingConnector, len(powers))
	for i := range powers {
		kw, err := strconv.ParseFloat(strings.TrimSpace(powers[i]), 64)
		if err != nil {
			return model.ChargingPark{}, fmt.Errorf("connector %d power: %w", i, err)
		}
		conns[i] = model.ChargingConnector{
			Type:         strings.TrimSpace(types[i]),
			RatedPowerKW: kw,
			CurrentType:  strings.TrimSpace(currents[i]),
		}
	}
	return model.ChargingPark{
		ExternalID: id,
		Name:       rec[colName],
		Location:   model.GeoPoint{Latitude: lat, Longitude: lon},
		Connectors: conns,
	}, nil
}

// snap attaches the park to the node nearest to its entrance.
func snap(park *model.ChargingPark, rec []string, snapper network.Snapper, radius float64) error {
	lat, err := strconv.ParseFloat(rec[colEntryLat], 64)
	if err != nil {
		return fmt.Errorf("entry latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(rec[colEntryLon], 64)
	if err != nil {
		return fmt.Errorf("entry longitude: %w", err)
	}
	node, ok := snapper.Nearest(model.GeoPoint{Latitude: lat, Longitude: lon}, radius)
	if !ok {
		return fmt.Errorf("no road within %.0f m", radius)
	}
	park.Node = node
	return nil
}
