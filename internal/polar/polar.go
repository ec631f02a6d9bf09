// Package polar holds the per-class vessel performance tables: turn rate,
// speed response to wind angle and strength, and the inertia constant that
// governs how quickly a hull converges on its target speed.
package polar

import (
	"fmt"
	"math"

	"github.com/spf13/viper"

	"github.com/windward-sim/windward/pkg/geo"
)

// Band is one segment of a polar curve: for absolute wind angles below Max,
// the attainable speed is Factor times the capped base speed.
type Band struct {
	Max    float64
	Factor float64
}

// Performance describes one vessel class.
type Performance struct {
	// TurnRateDps is the turn rate in degrees per second.
	TurnRateDps float64

	// InertiaSec is the speed-response time constant in seconds. Larger
	// values accelerate more slowly toward the wind-driven target speed.
	InertiaSec float64

	// MinAngle is the closest absolute angle to the wind the class can sail;
	// inside it the attainable speed is zero (in irons).
	MinAngle float64

	// DriveFactor scales wind speed into base hull speed.
	DriveFactor float64

	// MaxSpeedMps caps the base hull speed.
	MaxSpeedMps float64

	// Bands must be ordered by ascending Max and end at 180.
	Bands []Band
}

// DefaultClass is used when a lookup names an unknown class.
const DefaultClass = "sloop"

var classes = map[string]Performance{
	"sloop": {
		TurnRateDps: 10,
		InertiaSec:  20,
		MinAngle:    45,
		DriveFactor: 0.6,
		MaxSpeedMps: 5.5,
		Bands: []Band{
			{Max: 60, Factor: 0.6},
			{Max: 90, Factor: 0.8},
			{Max: 120, Factor: 1.0},
			{Max: 150, Factor: 0.9},
			{Max: 180, Factor: 0.7},
		},
	},
	"racer": {
		TurnRateDps: 15,
		InertiaSec:  10,
		MinAngle:    40,
		DriveFactor: 0.9,
		MaxSpeedMps: 10.0,
		Bands: []Band{
			{Max: 55, Factor: 0.7},
			{Max: 90, Factor: 0.9},
			{Max: 130, Factor: 1.0},
			{Max: 160, Factor: 0.85},
			{Max: 180, Factor: 0.65},
		},
	},
	"cruiser": {
		TurnRateDps: 7,
		InertiaSec:  35,
		MinAngle:    50,
		DriveFactor: 0.5,
		MaxSpeedMps: 4.5,
		Bands: []Band{
			{Max: 70, Factor: 0.55},
			{Max: 100, Factor: 0.8},
			{Max: 130, Factor: 1.0},
			{Max: 180, Factor: 0.75},
		},
	},
	"tallship": {
		TurnRateDps: 3,
		InertiaSec:  60,
		MinAngle:    65,
		DriveFactor: 0.45,
		MaxSpeedMps: 6.5,
		Bands: []Band{
			{Max: 90, Factor: 0.5},
			{Max: 120, Factor: 0.85},
			{Max: 150, Factor: 1.0},
			{Max: 180, Factor: 0.9},
		},
	},
}

// LoadClasses merges class definitions from the polar.classes config key
// over the built-ins. A configured class replaces a built-in of the same
// name entirely; new names extend the set.
func LoadClasses() error {
	if !viper.IsSet("polar.classes") {
		return nil
	}

	overrides := map[string]Performance{}
	if err := viper.UnmarshalKey("polar.classes", &overrides); err != nil {
		return fmt.Errorf("failed to parse polar.classes: %w", err)
	}

	for name, p := range overrides {
		if len(p.Bands) == 0 {
			return fmt.Errorf("polar class %q has no bands", name)
		}
		if p.Bands[len(p.Bands)-1].Max < 180 {
			return fmt.Errorf("polar class %q bands must end at 180", name)
		}
		classes[name] = p
	}
	return nil
}

// Lookup returns the performance table for a class, falling back to the
// default class when the name is unknown.
func Lookup(class string) Performance {
	if p, ok := classes[class]; ok {
		return p
	}
	return classes[DefaultClass]
}

// Classes returns the known class names.
func Classes() []string {
	names := make([]string, 0, len(classes))
	for name := range classes {
		names = append(names, name)
	}
	return names
}

// TurnRate returns the class turn rate in degrees per second.
func TurnRate(class string) float64 {
	return Lookup(class).TurnRateDps
}

// Inertia returns the class speed-response time constant in seconds.
func Inertia(class string) float64 {
	return Lookup(class).InertiaSec
}

// Speed returns the attainable speed in m/s for the given wind speed and
// signed angle from the wind.
func Speed(windMps, angleFromWind float64, class string) float64 {
	p := Lookup(class)

	abs := math.Abs(geo.Diff(0, angleFromWind))
	if abs < p.MinAngle {
		return 0
	}

	base := windMps * p.DriveFactor
	if base > p.MaxSpeedMps {
		base = p.MaxSpeedMps
	}

	for _, b := range p.Bands {
		if abs <= b.Max {
			return base * b.Factor
		}
	}
	return base * p.Bands[len(p.Bands)-1].Factor
}
