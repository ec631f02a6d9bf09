// Package boat implements the per-tick motion model of a single sailing
// vessel: heading control toward a desired course, wind-driven speed response
// with hull inertia, drift with sails down, and the land-to-water departure
// regime used when a vessel is started from shore.
package boat

import (
	"math"
	"math/rand"

	"github.com/windward-sim/windward/internal/chart"
	"github.com/windward-sim/windward/internal/ocean"
	"github.com/windward-sim/windward/internal/polar"
	"github.com/windward-sim/windward/internal/weather"
	"github.com/windward-sim/windward/pkg/geo"
)

const (
	// forbiddenLat is the latitude margin around the poles inside which a
	// vessel is stopped; the great-circle advance degenerates there.
	forbiddenLat = 0.0001

	// moveToWaterDistance is how far ahead (metres) a vessel on land probes
	// for water along its desired course before giving up.
	moveToWaterDistance = 100.0

	// probeStep is the sampling increment of the water probe.
	probeStep = 10.0
)

// Environment bundles the external lookups one tick consults. All lookups are
// synchronous; Rand is the stream used for the near-opposite course tie-break
// and must not be shared across concurrently ticking contexts.
type Environment struct {
	Chart   chart.Chart
	Weather weather.Provider
	Ocean   ocean.Provider
	Rand    *rand.Rand
}

// Boat is the state of one simulated vessel. A Boat is exclusively owned by
// whoever drives its ticks; no two ticks for the same Boat may run at once.
type Boat struct {
	Pos geo.Pos
	Vel geo.Vec

	DesiredCourse     float64
	DistanceTravelled float64

	// Class selects the performance table. Immutable after creation.
	Class string

	Stopped     bool
	SailsDown   bool
	MovingToSea bool

	snapCourseOnFirstMove bool
}

// New creates a vessel at the given position with zero velocity. The caller
// decides whether it starts stopped; a fresh boat snaps onto its desired
// course the first time it reaches water.
func New(lat, lon float64, class string) *Boat {
	return &Boat{
		Pos:                   geo.Pos{Lat: lat, Lon: lon},
		Class:                 class,
		Stopped:               true,
		snapCourseOnFirstMove: true,
	}
}

// Start clears the stopped state and puts the vessel into the moving-to-sea
// regime so it can depart from land if that is where it sits.
func (b *Boat) Start() {
	if !b.Stopped {
		return
	}
	b.Stopped = false
	b.MovingToSea = true
}

// Stop forces the vessel to a halt.
func (b *Boat) Stop() {
	b.stop()
}

// SetDesiredCourse sets the pilot-commanded course in degrees.
func (b *Boat) SetDesiredCourse(deg float64) {
	b.DesiredCourse = geo.Normalize(deg)
}

// SetSailsDown raises or lowers the sails-down drift modifier.
func (b *Boat) SetSailsDown(down bool) {
	b.SailsDown = down
}

// Advance runs one simulation tick of dt seconds, mutating the vessel in
// place. Non-positive dt is treated as a no-op.
func (b *Boat) Advance(env *Environment, dt float64) {
	if b.Stopped || dt <= 0 {
		return
	}

	if b.Pos.Lat >= 90.0-forbiddenLat || b.Pos.Lat <= -90.0+forbiddenLat {
		// Too close to a pole for the position math to behave.
		b.stop()
		return
	}

	if b.MovingToSea {
		if env.Chart.IsWater(b.Pos) {
			b.MovingToSea = false

			if b.snapCourseOnFirstMove {
				// First time the boat is started, so take up the
				// desired course immediately.
				b.Vel.Angle = b.DesiredCourse
				b.snapCourseOnFirstMove = false
			}
		} else {
			if b.headingTowardWater(env.Chart) {
				// Water ahead; proceed toward it at half reference speed.
				b.Vel.Angle = b.DesiredCourse
				b.Vel.Mag = dt * 0.5

				b.Pos.Advance(b.Vel)
			} else {
				b.stop()
			}
			return
		}
	}

	od, oceanDataValid := env.Ocean.At(b.Pos)

	if b.SailsDown {
		// Sails down: drift downwind at a tenth of the wind speed.
		wind := env.Weather.WindAt(b.Pos)

		b.Vel.Angle = geo.Normalize(wind.Angle + 180.0)
		b.Vel.Mag = wind.Mag * 0.1 * ocean.IceFactor(oceanDataValid, od.IcePct)
	} else {
		b.updateCourse(env.Rand, dt)
		b.updateVelocity(env.Weather, dt, oceanDataValid, od)
	}

	// Advance position over water.
	v := b.Vel.Scaled(dt)
	b.Pos.Advance(v)

	// Add ocean current (if applicable).
	if oceanDataValid {
		cur := od.Current.Scaled(dt)
		b.Pos.Advance(cur)

		// Distance travelled increases by the magnitude of the vector sum
		// of the velocity over water and the ocean current.
		b.DistanceTravelled += geo.VecAdd(cur, v).Mag
	} else {
		b.DistanceTravelled += v.Mag
	}

	// Check that we are still in water.
	if !env.Chart.IsWater(b.Pos) {
		b.stop()
	}
}

// headingTowardWater probes along the desired course in fixed increments and
// reports whether water is reachable within the probe range.
func (b *Boat) headingTowardWater(c chart.Chart) bool {
	pos := b.Pos
	v := geo.Vec{Angle: b.DesiredCourse, Mag: probeStep}

	for d := 0.0; d <= moveToWaterDistance+probeStep; d += probeStep {
		if c.IsWater(pos) {
			return true
		}
		pos.Advance(v)
	}
	return false
}

// updateCourse turns the vessel toward its desired course at the class turn
// rate, snapping exactly when within reach and breaking the dead-opposite tie
// at random.
func (b *Boat) updateCourse(rng *rand.Rand, dt float64) {
	diff := geo.Diff(b.Vel.Angle, b.DesiredCourse)
	rate := polar.TurnRate(b.Class)

	if math.Abs(diff) <= rate*dt {
		// Desired course is close enough to reach this tick.
		b.Vel.Angle = b.DesiredCourse
		return
	}

	switch {
	case diff < 0 && diff >= -179.0:
		b.Vel.Angle -= rate * dt
	case diff > 0 && diff <= 179.0:
		b.Vel.Angle += rate * dt
	default:
		// Within a degree of being opposite where we want to go,
		// so choose a direction at random.
		if rng.Intn(2) == 0 {
			b.Vel.Angle -= rate * dt
		} else {
			b.Vel.Angle += rate * dt
		}
	}

	b.Vel.Angle = geo.Normalize(b.Vel.Angle)
}

// updateVelocity eases the speed toward the wind-driven target using the
// class inertia constant.
func (b *Boat) updateVelocity(w weather.Provider, dt float64, odValid bool, od ocean.Data) {
	wind := w.WindAt(b.Pos)

	angleFromWind := geo.Diff(wind.Angle, b.Vel.Angle)
	target := polar.Speed(wind.Mag, angleFromWind, b.Class) * ocean.IceFactor(odValid, od.IcePct)

	tau := polar.Inertia(b.Class)
	b.Vel.Mag = (tau*b.Vel.Mag + dt*target) / (tau + dt)
}

func (b *Boat) stop() {
	b.Stopped = true
	b.Vel.Mag = 0
}
