package model

// NodeID identifies a road network node.
type NodeID int64

// EdgeID identifies a directed road network edge.
type EdgeID int

// Edge is a directed road segment.
type Edge struct {
	Tail          NodeID
	Head          NodeID
	LengthMeters  float64
	TravelTimeSec float64
	// AltitudeGainKm is the elevation difference head minus tail. Negative on descents.
	AltitudeGainKm float64
}

// SpeedKmh returns the average speed implied by length and travel time.
func (e Edge) SpeedKmh() float64 {
	if e.TravelTimeSec <= 0 {
		return 0
	}
	return e.LengthMeters / e.TravelTimeSec * 3.6
}
