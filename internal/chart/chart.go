// Package chart provides land/water classification for the simulation.
//
// Land masses are held as simplefeatures geometries in EPSG:3857. Queries
// arrive as EPSG:4326 lat/lon positions and are projected before the
// point-in-polygon test, matching how the rest of the system stores geometry.
package chart

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"

	"github.com/windward-sim/windward/pkg/geo"
)

// Chart classifies a position as water or land.
type Chart interface {
	IsWater(pos geo.Pos) bool
}

// OpenSea is a chart with no land at all. Used in tests and for open-ocean runs.
type OpenSea struct{}

// IsWater always returns true.
func (OpenSea) IsWater(geo.Pos) bool { return true }

// PolygonChart classifies positions against a set of land polygons.
type PolygonChart struct {
	land      []geom.Geometry
	transform func(a, b, c float64) (float64, float64, float64)
}

// NewPolygonChart creates a chart from land geometries in EPSG:3857.
func NewPolygonChart(land []geom.Geometry) *PolygonChart {
	epsg := wgs84.EPSG()
	return &PolygonChart{
		land:      land,
		transform: epsg.Transform(4326, 3857),
	}
}

// IsWater returns true when the position does not intersect any land polygon.
func (c *PolygonChart) IsWater(pos geo.Pos) bool {
	x, y, _ := c.transform(pos.Lon, pos.Lat, 0)

	point := geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: x, Y: y},
		Type: geom.DimXY,
	})
	pg := point.AsGeometry()

	for _, l := range c.land {
		if geom.Intersects(l, pg) {
			return false
		}
	}
	return true
}

// LoadLandFile reads one WKT geometry per non-empty line from the given file.
// Geometries are expected in EPSG:3857.
func LoadLandFile(path string) ([]geom.Geometry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open land file: %w", err)
	}
	defer f.Close()

	var land []geom.Geometry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		g, err := geom.UnmarshalWKT(text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse WKT on line %d: %w", line, err)
		}
		land = append(land, g)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read land file: %w", err)
	}

	return land, nil
}
