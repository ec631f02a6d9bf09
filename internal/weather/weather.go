// Package weather provides local wind lookups for the simulation.
package weather

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/windward-sim/windward/pkg/geo"
)

// Provider returns the wind vector at a position. Lookups are synchronous and
// never fail; a provider with no data for a location returns a calm vector.
type Provider interface {
	WindAt(pos geo.Pos) geo.Vec
}

// Uniform is a provider with the same wind everywhere.
type Uniform struct {
	Wind geo.Vec
}

// WindAt returns the configured wind regardless of position.
func (u Uniform) WindAt(geo.Pos) geo.Vec { return u.Wind }

// Grid holds wind u/v components (m/s, east/north) on a regular lat/lon grid.
type Grid struct {
	Lat0 float64     `json:"lat0"`
	Lon0 float64     `json:"lon0"`
	DLat float64     `json:"dLat"`
	DLon float64     `json:"dLon"`
	U    [][]float64 `json:"u"` // [row][col], row 0 at Lat0
	V    [][]float64 `json:"v"`
}

// GridProvider interpolates wind bilinearly over a Grid.
type GridProvider struct {
	grid Grid
}

// NewGridProvider wraps a grid after validating its shape.
func NewGridProvider(g Grid) (*GridProvider, error) {
	if len(g.U) == 0 || len(g.U[0]) == 0 {
		return nil, fmt.Errorf("wind grid has no cells")
	}
	if len(g.U) != len(g.V) || len(g.U[0]) != len(g.V[0]) {
		return nil, fmt.Errorf("wind grid u/v shapes differ: %dx%d vs %dx%d",
			len(g.U), len(g.U[0]), len(g.V), len(g.V[0]))
	}
	if g.DLat <= 0 || g.DLon <= 0 {
		return nil, fmt.Errorf("wind grid spacing must be positive")
	}
	return &GridProvider{grid: g}, nil
}

// LoadGridFile reads a JSON-encoded wind grid from disk.
func LoadGridFile(path string) (*GridProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read wind grid file: %w", err)
	}
	var g Grid
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to parse wind grid file: %w", err)
	}
	return NewGridProvider(g)
}

// WindAt returns the bilinearly interpolated wind at the position.
// Positions outside the grid clamp to the nearest edge cell.
func (p *GridProvider) WindAt(pos geo.Pos) geo.Vec {
	u := interpolate(p.grid.U, p.grid, pos)
	v := interpolate(p.grid.V, p.grid, pos)

	mag := math.Sqrt(u*u + v*v)
	if mag == 0 {
		return geo.Vec{}
	}
	return geo.Vec{
		Angle: geo.Normalize(math.Atan2(u, v) * 180.0 / math.Pi),
		Mag:   mag,
	}
}

func interpolate(field [][]float64, g Grid, pos geo.Pos) float64 {
	rows := len(field)
	cols := len(field[0])

	fr := (pos.Lat - g.Lat0) / g.DLat
	fc := (pos.Lon - g.Lon0) / g.DLon

	fr = clamp(fr, 0, float64(rows-1))
	fc = clamp(fc, 0, float64(cols-1))

	r0 := int(math.Floor(fr))
	c0 := int(math.Floor(fc))
	r1 := min(r0+1, rows-1)
	c1 := min(c0+1, cols-1)

	tr := fr - float64(r0)
	tc := fc - float64(c0)

	top := field[r0][c0]*(1-tc) + field[r0][c1]*tc
	bottom := field[r1][c0]*(1-tc) + field[r1][c1]*tc
	return top*(1-tr) + bottom*tr
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
