package geo

import "math"

// Normalize wraps an angle in degrees into [0, 360).
func Normalize(deg float64) float64 {
	deg = math.Mod(deg, 360.0)
	if deg < 0 {
		deg += 360.0
	}
	return deg
}

// Diff returns the signed shortest rotation from a to b in degrees,
// in the range (-180, 180]. Negative means b lies to the left of a.
func Diff(a, b float64) float64 {
	d := math.Mod(b-a, 360.0)
	if d > 180.0 {
		d -= 360.0
	} else if d <= -180.0 {
		d += 360.0
	}
	return d
}
