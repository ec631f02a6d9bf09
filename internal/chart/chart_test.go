package chart

import (
	"os"
	"path/filepath"
	"testing"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windward-sim/windward/pkg/core"
	"github.com/windward-sim/windward/pkg/geo"
)

// square land mass in EPSG:3857 covering roughly lon 0..1.8, lat 0..1.8
const landWKT = "POLYGON((0 0, 200000 0, 200000 200000, 0 200000, 0 0))"

func mustGeom(t *testing.T, wkt string) geom.Geometry {
	t.Helper()
	g, err := geom.UnmarshalWKT(wkt)
	require.NoError(t, err)
	return g
}

func TestOpenSea(t *testing.T) {
	var c Chart = OpenSea{}
	assert.True(t, c.IsWater(geo.Pos{Lat: 0, Lon: 0}))
	assert.True(t, c.IsWater(geo.Pos{Lat: -89, Lon: 179}))
}

func TestPolygonChart_Land(t *testing.T) {
	c := NewPolygonChart([]geom.Geometry{mustGeom(t, landWKT)})

	assert.False(t, c.IsWater(geo.Pos{Lat: 0.5, Lon: 0.5}), "point inside land polygon")
	assert.True(t, c.IsWater(geo.Pos{Lat: -1.0, Lon: -1.0}), "point outside land polygon")
	assert.True(t, c.IsWater(geo.Pos{Lat: 0.5, Lon: 10.0}), "point far east of land polygon")
}

func TestPolygonChart_NoLand(t *testing.T) {
	c := NewPolygonChart(nil)
	assert.True(t, c.IsWater(geo.Pos{Lat: 12.34, Lon: -56.78}))
}

func TestLoadLandFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "land.wkt")
	content := "# test land\n" + landWKT + "\n\nPOLYGON((300000 300000, 400000 300000, 400000 400000, 300000 400000, 300000 300000))\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	land, err := LoadLandFile(path)
	require.NoError(t, err)
	assert.Len(t, land, 2)
}

func TestLoadLandFile_BadWKT(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "land.wkt")
	require.NoError(t, os.WriteFile(path, []byte("NOT A GEOMETRY\n"), 0644))

	_, err := LoadLandFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestLoadLandFile_Missing(t *testing.T) {
	_, err := LoadLandFile("/nonexistent/land.wkt")
	require.Error(t, err)
}

func TestTrackLineString(t *testing.T) {
	points := []core.TrackPoint{
		{Position: geo.Pos{Lat: 10, Lon: 20}},
		{Position: geo.Pos{Lat: 11, Lon: 21}},
		{Position: geo.Pos{Lat: 12, Lon: 22}},
	}

	ls, err := TrackLineString(points)
	require.NoError(t, err)

	seq := ls.Coordinates()
	require.Equal(t, 3, seq.Length())
	first := seq.GetXY(0)
	assert.Equal(t, 20.0, first.X)
	assert.Equal(t, 10.0, first.Y)
}

func TestTrackLineString_TooShort(t *testing.T) {
	_, err := TrackLineString([]core.TrackPoint{{Position: geo.Pos{Lat: 1, Lon: 2}}})
	require.Error(t, err)
}
