package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EarthRadiusKm is the mean earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// GeoPoint is a latitude/longitude pair in degrees.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DistanceKm returns the haversine distance between p and q on a spherical earth.
func (p GeoPoint) DistanceKm(q GeoPoint) float64 {
	pLat, pLon := toRadians(p.Latitude), toRadians(p.Longitude)
	qLat, qLon := toRadians(q.Latitude), toRadians(q.Longitude)
	dLat := qLat - pLat
	dLon := qLon - pLon
	a := math.Pow(math.Sin(dLat/2), 2) + math.Cos(pLat)*math.Cos(qLat)*math.Pow(math.Sin(dLon/2), 2)
	return 2 * math.Asin(math.Sqrt(a)) * EarthRadiusKm
}

// Valid reports whether the coordinate lies within the WGS84 bounds.
func (p GeoPoint) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

func (p GeoPoint) String() string {
	return strconv.FormatFloat(p.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(p.Longitude, 'f', -1, 64)
}

// ParseGeoPoint parses a "lat,lon" string.
func ParseGeoPoint(s string) (GeoPoint, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return GeoPoint{}, fmt.Errorf("invalid coordinate %q: expected lat,lon", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return GeoPoint{}, fmt.Errorf("invalid latitude %q: %w", parts[0], err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return GeoPoint{}, fmt.Errorf("invalid longitude %q: %w", parts[1], err)
	}
	p := GeoPoint{Latitude: lat, Longitude: lon}
	if !p.Valid() {
		return GeoPoint{}, fmt.Errorf("coordinate %q out of range", s)
	}
	return p, nil
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
