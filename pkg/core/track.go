// pkg/core/track.go
package core

import (
	"time"

	"github.com/windward-sim/windward/pkg/geo"
)

// TrackPoint represents one vessel's state at the end of a tick.
// BoatID references the BoatRecord's ID.
type TrackPoint struct {
	BoatID            uint16
	Time              time.Time
	Tick              uint64
	Position          geo.Pos
	Heading           float64
	SpeedMps          float64
	DesiredCourse     float64
	DistanceTravelled float64
	SailsDown         bool
	MovingToSea       bool
	Stopped           bool
	WindAngle         float64
	WindMps           float64
	CurrentAngle      float64
	CurrentMps        float64
	IcePct            float64
	OceanDataValid    bool
}

// UploadMetadata describes an exported voyage file for upload to a web frontend.
type UploadMetadata struct {
	VoyageName string
	ChartName  string
	Tag        string
	StartTime  time.Time
}
