package chart

import (
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/windward-sim/windward/pkg/core"
)

// TrackLineString builds a lon/lat LineString from a vessel's track points,
// suitable for WKT/WKB export alongside a voyage recording.
func TrackLineString(points []core.TrackPoint) (geom.LineString, error) {
	if len(points) < 2 {
		return geom.LineString{}, fmt.Errorf("track must have at least 2 points, got %d", len(points))
	}

	flat := make([]float64, 0, len(points)*2)
	for _, p := range points {
		flat = append(flat, p.Position.Lon, p.Position.Lat)
	}

	seq := geom.NewSequence(flat, geom.DimXY)
	return geom.NewLineString(seq), nil
}
