// Package geo provides the geographic primitives used by the simulation:
// latitude/longitude positions, heading/magnitude vectors, and compass math.
// Positions only ever move through Advance so every displacement follows the
// same great-circle step.
package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EarthRadius is the mean Earth radius in metres.
const EarthRadius = 6371000.0

// ErrInvalidCoordinates is returned when a coordinate string cannot be parsed.
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// Pos is a geographic position in degrees. Lat is in [-90, 90],
// Lon is kept in [-180, 180).
type Pos struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Vec is a polar vector: compass angle in degrees [0, 360) and a
// non-negative magnitude in metres (or metres/second when used as velocity).
type Vec struct {
	Angle float64 `json:"angle"`
	Mag   float64 `json:"mag"`
}

// Advance moves the position along the great circle defined by the vector's
// compass angle, by the vector's magnitude in metres.
func (p *Pos) Advance(v Vec) {
	if v.Mag == 0 {
		return
	}

	lat1 := p.Lat * math.Pi / 180.0
	lon1 := p.Lon * math.Pi / 180.0
	theta := v.Angle * math.Pi / 180.0
	delta := v.Mag / EarthRadius

	sinLat2 := math.Sin(lat1)*math.Cos(delta) + math.Cos(lat1)*math.Sin(delta)*math.Cos(theta)
	lat2 := math.Asin(sinLat2)
	lon2 := lon1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(lat1),
		math.Cos(delta)-math.Sin(lat1)*sinLat2,
	)

	p.Lat = lat2 * 180.0 / math.Pi
	p.Lon = lon2 * 180.0 / math.Pi

	// Keep longitude in [-180, 180).
	if p.Lon >= 180.0 {
		p.Lon -= 360.0
	} else if p.Lon < -180.0 {
		p.Lon += 360.0
	}
}

// VecAdd returns the vector sum of a and b in polar form.
func VecAdd(a, b Vec) Vec {
	ax := a.Mag * math.Sin(a.Angle*math.Pi/180.0)
	ay := a.Mag * math.Cos(a.Angle*math.Pi/180.0)
	bx := b.Mag * math.Sin(b.Angle*math.Pi/180.0)
	by := b.Mag * math.Cos(b.Angle*math.Pi/180.0)

	x := ax + bx
	y := ay + by

	mag := math.Sqrt(x*x + y*y)
	if mag == 0 {
		return Vec{}
	}
	return Vec{
		Angle: Normalize(math.Atan2(x, y) * 180.0 / math.Pi),
		Mag:   mag,
	}
}

// Scaled returns a copy of the vector with the magnitude multiplied by f.
func (v Vec) Scaled(f float64) Vec {
	v.Mag *= f
	return v
}

// PosFromString parses a "lat,lon" string into a Pos.
func PosFromString(coords string) (Pos, error) {
	split := strings.Split(coords, ",")
	if len(split) != 2 {
		return Pos{}, ErrInvalidCoordinates
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(split[0]), 64)
	if err != nil {
		return Pos{}, ErrInvalidCoordinates
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(split[1]), 64)
	if err != nil {
		return Pos{}, ErrInvalidCoordinates
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Pos{}, ErrInvalidCoordinates
	}
	return Pos{Lat: lat, Lon: lon}, nil
}

// String formats the position as "lat,lon" with six decimal places.
func (p Pos) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lon)
}
