package ocean

import (
	"math"
	"testing"

	"github.com/windward-sim/windward/pkg/geo"
)

func testGrid() Grid {
	return Grid{
		Lat0: 0, Lon0: 0, DLat: 1, DLon: 1,
		U:   [][]float64{{1, 0}, {0, 0}},
		V:   [][]float64{{0, 0}, {0, 2}},
		Ice: [][]float64{{0, 50}, {0, 0}},
	}
}

func TestNoData(t *testing.T) {
	var p Provider = NoData{}
	_, ok := p.At(geo.Pos{Lat: 10, Lon: 10})
	if ok {
		t.Error("NoData reported data")
	}
}

func TestIceFactor(t *testing.T) {
	cases := []struct {
		valid bool
		ice   float64
		want  float64
	}{
		{true, 0, 1.0},
		{true, 50, 0.5},
		{true, 100, 0.0},
		{false, 80, 1.0},
	}
	for _, c := range cases {
		if got := IceFactor(c.valid, c.ice); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("IceFactor(%v, %f) = %f, want %f", c.valid, c.ice, got, c.want)
		}
	}
}

func TestGridProvider_At(t *testing.T) {
	p, err := NewGridProvider(testGrid())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Cell (0,0): eastward current of 1 m/s.
	d, ok := p.At(geo.Pos{Lat: 0.1, Lon: -0.2})
	if !ok {
		t.Fatal("expected data")
	}
	if math.Abs(d.Current.Angle-90.0) > 1e-9 || math.Abs(d.Current.Mag-1.0) > 1e-9 {
		t.Errorf("unexpected current: %v", d.Current)
	}

	// Cell (0,1): ice coverage.
	d, ok = p.At(geo.Pos{Lat: 0, Lon: 1})
	if !ok {
		t.Fatal("expected data")
	}
	if d.IcePct != 50 {
		t.Errorf("expected 50%% ice, got %f", d.IcePct)
	}

	// Cell (1,1): northward current of 2 m/s.
	d, ok = p.At(geo.Pos{Lat: 1, Lon: 1})
	if !ok {
		t.Fatal("expected data")
	}
	if math.Abs(d.Current.Angle) > 1e-9 || math.Abs(d.Current.Mag-2.0) > 1e-9 {
		t.Errorf("unexpected current: %v", d.Current)
	}
}

func TestGridProvider_OutsideGrid(t *testing.T) {
	p, err := NewGridProvider(testGrid())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := p.At(geo.Pos{Lat: 40, Lon: 40}); ok {
		t.Error("expected no data outside grid")
	}
	if _, ok := p.At(geo.Pos{Lat: -40, Lon: 0}); ok {
		t.Error("expected no data outside grid")
	}
}

func TestNewGridProvider_Invalid(t *testing.T) {
	cases := []Grid{
		{},
		{DLat: 1, DLon: 1, U: [][]float64{{1}}, V: [][]float64{{1}}, Ice: [][]float64{{1}, {2}}},
		{DLat: -1, DLon: 1, U: [][]float64{{1}}, V: [][]float64{{1}}, Ice: [][]float64{{1}}},
	}
	for i, g := range cases {
		if _, err := NewGridProvider(g); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}
