// Package ocean provides ocean current and sea-ice lookups for the simulation.
package ocean

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/windward-sim/windward/pkg/geo"
)

// Data is the ocean state at one position.
type Data struct {
	Current geo.Vec
	IcePct  float64 // sea-ice coverage, 0..100
}

// Provider returns ocean data at a position. The boolean reports whether the
// provider has data there; false is a neutral answer, never an error.
type Provider interface {
	At(pos geo.Pos) (Data, bool)
}

// NoData is a provider with no ocean data anywhere.
type NoData struct{}

// At always reports no data.
func (NoData) At(geo.Pos) (Data, bool) { return Data{}, false }

// IceFactor converts sea-ice coverage into a multiplicative speed penalty.
// Without valid data there is no penalty.
func IceFactor(valid bool, icePct float64) float64 {
	if !valid {
		return 1.0
	}
	return 1.0 - icePct/100.0
}

// Grid holds current u/v components (m/s, east/north) and ice coverage on a
// regular lat/lon grid. Unlike wind, positions outside the grid have no data.
type Grid struct {
	Lat0 float64     `json:"lat0"`
	Lon0 float64     `json:"lon0"`
	DLat float64     `json:"dLat"`
	DLon float64     `json:"dLon"`
	U    [][]float64 `json:"u"`
	V    [][]float64 `json:"v"`
	Ice  [][]float64 `json:"ice"`
}

// GridProvider serves ocean data from a Grid using nearest-cell lookups.
type GridProvider struct {
	grid Grid
}

// NewGridProvider wraps a grid after validating its shape.
func NewGridProvider(g Grid) (*GridProvider, error) {
	if len(g.U) == 0 || len(g.U[0]) == 0 {
		return nil, fmt.Errorf("ocean grid has no cells")
	}
	if len(g.U) != len(g.V) || len(g.U) != len(g.Ice) {
		return nil, fmt.Errorf("ocean grid field row counts differ")
	}
	if len(g.U[0]) != len(g.V[0]) || len(g.U[0]) != len(g.Ice[0]) {
		return nil, fmt.Errorf("ocean grid field column counts differ")
	}
	if g.DLat <= 0 || g.DLon <= 0 {
		return nil, fmt.Errorf("ocean grid spacing must be positive")
	}
	return &GridProvider{grid: g}, nil
}

// LoadGridFile reads a JSON-encoded ocean grid from disk.
func LoadGridFile(path string) (*GridProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ocean grid file: %w", err)
	}
	var g Grid
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to parse ocean grid file: %w", err)
	}
	return NewGridProvider(g)
}

// At returns the ocean data of the cell nearest the position, or no data when
// the position falls outside the grid.
func (p *GridProvider) At(pos geo.Pos) (Data, bool) {
	rows := len(p.grid.U)
	cols := len(p.grid.U[0])

	r := int(math.Round((pos.Lat - p.grid.Lat0) / p.grid.DLat))
	c := int(math.Round((pos.Lon - p.grid.Lon0) / p.grid.DLon))

	if r < 0 || r >= rows || c < 0 || c >= cols {
		return Data{}, false
	}

	u := p.grid.U[r][c]
	v := p.grid.V[r][c]
	mag := math.Sqrt(u*u + v*v)

	var cur geo.Vec
	if mag > 0 {
		cur = geo.Vec{
			Angle: geo.Normalize(math.Atan2(u, v) * 180.0 / math.Pi),
			Mag:   mag,
		}
	}

	return Data{Current: cur, IcePct: p.grid.Ice[r][c]}, true
}
