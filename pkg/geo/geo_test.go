package geo

import (
	"math"
	"testing"
)

func TestAdvanceNorth(t *testing.T) {
	p := Pos{Lat: 0, Lon: 0}
	p.Advance(Vec{Angle: 0, Mag: 111195}) // ~1 degree of latitude

	if math.Abs(p.Lat-1.0) > 0.01 {
		t.Errorf("expected lat near 1.0, got %f", p.Lat)
	}
	if math.Abs(p.Lon) > 0.0001 {
		t.Errorf("expected lon unchanged, got %f", p.Lon)
	}
}

func TestAdvanceEastAtEquator(t *testing.T) {
	p := Pos{Lat: 0, Lon: 0}
	p.Advance(Vec{Angle: 90, Mag: 111195})

	if math.Abs(p.Lon-1.0) > 0.01 {
		t.Errorf("expected lon near 1.0, got %f", p.Lon)
	}
	if math.Abs(p.Lat) > 0.0001 {
		t.Errorf("expected lat unchanged, got %f", p.Lat)
	}
}

func TestAdvanceZeroMagnitude(t *testing.T) {
	p := Pos{Lat: 45.5, Lon: -60.25}
	p.Advance(Vec{Angle: 123, Mag: 0})

	if p.Lat != 45.5 || p.Lon != -60.25 {
		t.Errorf("position changed on zero-magnitude advance: %v", p)
	}
}

func TestAdvanceWrapsAntimeridian(t *testing.T) {
	p := Pos{Lat: 0, Lon: 179.9}
	p.Advance(Vec{Angle: 90, Mag: 50000})

	if p.Lon >= 180.0 || p.Lon < -180.0 {
		t.Errorf("longitude not wrapped: %f", p.Lon)
	}
	if p.Lon > 0 {
		t.Errorf("expected longitude on the western side after crossing, got %f", p.Lon)
	}
}

func TestVecAddOpposite(t *testing.T) {
	sum := VecAdd(Vec{Angle: 0, Mag: 5}, Vec{Angle: 180, Mag: 5})
	if sum.Mag > 1e-9 {
		t.Errorf("expected zero magnitude, got %f", sum.Mag)
	}
}

func TestVecAddPerpendicular(t *testing.T) {
	sum := VecAdd(Vec{Angle: 0, Mag: 3}, Vec{Angle: 90, Mag: 4})

	if math.Abs(sum.Mag-5.0) > 1e-9 {
		t.Errorf("expected magnitude 5, got %f", sum.Mag)
	}
	want := math.Atan2(4, 3) * 180.0 / math.Pi
	if math.Abs(sum.Angle-want) > 1e-9 {
		t.Errorf("expected angle %f, got %f", want, sum.Angle)
	}
}

func TestVecAddSameDirection(t *testing.T) {
	sum := VecAdd(Vec{Angle: 45, Mag: 2}, Vec{Angle: 45, Mag: 3})
	if math.Abs(sum.Mag-5.0) > 1e-9 {
		t.Errorf("expected magnitude 5, got %f", sum.Mag)
	}
	if math.Abs(sum.Angle-45.0) > 1e-9 {
		t.Errorf("expected angle 45, got %f", sum.Angle)
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{360, 0},
		{-10, 350},
		{370, 10},
		{720, 0},
		{-540, 180},
	}
	for _, c := range cases {
		if got := Normalize(c.in); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("Normalize(%f) = %f, want %f", c.in, got, c.want)
		}
	}
}

func TestDiff(t *testing.T) {
	cases := []struct{ a, b, want float64 }{
		{0, 90, 90},
		{90, 0, -90},
		{350, 10, 20},
		{10, 350, -20},
		{0, 180, 180},
		{180, 0, 180}, // exactly opposite resolves to +180
		{45, 45, 0},
	}
	for _, c := range cases {
		if got := Diff(c.a, c.b); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("Diff(%f, %f) = %f, want %f", c.a, c.b, got, c.want)
		}
	}
}

func TestDiffRange(t *testing.T) {
	for a := 0.0; a < 360.0; a += 7.3 {
		for b := 0.0; b < 360.0; b += 11.1 {
			d := Diff(a, b)
			if d <= -180.0 || d > 180.0 {
				t.Fatalf("Diff(%f, %f) = %f out of (-180, 180]", a, b, d)
			}
		}
	}
}

func TestPosFromString(t *testing.T) {
	p, err := PosFromString("43.5,-65.25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Lat != 43.5 || p.Lon != -65.25 {
		t.Errorf("unexpected position: %v", p)
	}
}

func TestPosFromStringInvalid(t *testing.T) {
	for _, s := range []string{"", "1", "abc,def", "91,0", "0,181"} {
		if _, err := PosFromString(s); err == nil {
			t.Errorf("expected error for %q", s)
		}
	}
}
