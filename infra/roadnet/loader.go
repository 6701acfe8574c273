package roadnet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/model"
)

// LoadFiles reads a network from a node file (id,latitude,longitude[,elevation_m])
// and an edge file (tail,head,length_m,travel_time_s). Both files start with a
// header row.
func LoadFiles(nodesPath, edgesPath string) (*Network, error) {
	nf, err := os.Open(nodesPath)
	if err != nil {
		return nil, fmt.Errorf("open nodes: %w", err)
	}
	defer func() { _ = nf.Close() }()
	ef, err := os.Open(edgesPath)
	if err != nil {
		return nil, fmt.Errorf("open edges: %w", err)
	}
	defer func() { _ = ef.Close() }()
	return Load(nf, ef)
}

// Load reads a network from CSV streams.
func Load(nodes, edges io.Reader) (*Network, error) {
	b := NewBuilder()
	if err := readRows(nodes, 3, func(line int, rec []string) error {
		id, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return fmt.Errorf("node id: %w", err)
		}
		lat, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return fmt.Errorf("latitude: %w", err)
		}
		lon, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return fmt.Errorf("longitude: %w", err)
		}
		var elev float64
		if len(rec) > 3 && rec[3] != "" {
			if elev, err = strconv.ParseFloat(rec[3], 64); err != nil {
				return fmt.Errorf("elevation: %w", err)
			}
		}
		return b.AddNode(model.NodeID(id), model.GeoPoint{Latitude: lat, Longitude: lon}, elev)
	}); err != nil {
		return nil, fmt.Errorf("nodes: %w", err)
	}
	if err := readRows(edges, 4, func(line int, rec []string) error {
		tail, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return fmt.Errorf("tail: %w", err)
		}
		head, err := strconv.ParseInt(rec[1], 10, 64)
		if err != nil {
			return fmt.Errorf("head: %w", err)
		}
		length, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return fmt.Errorf("length: %w", err)
		}
		secs, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return fmt.Errorf("travel time: %w", err)
		}
		_, err = b.AddEdge(model.NodeID(tail), model.NodeID(head), length, secs)
		return err
	}); err != nil {
		return nil, fmt.Errorf("edges: %w", err)
	}
	return b.Build()
}

func readRows(r io.Reader, minFields int, fn func(line int, rec []string) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		line++
		if line == 1 {
			continue
		}
		if len(rec) < minFields {
			return fmt.Errorf("line %d: expected %d fields, got %d", line, minFields, len(rec))
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		if err := fn(line, rec); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
}
