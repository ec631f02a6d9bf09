// Package convert provides functions to convert GORM models to core models
package convert

import (
	"encoding/json"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/windward-sim/windward/internal/model"
	"github.com/windward-sim/windward/pkg/core"
	"github.com/windward-sim/windward/pkg/geo"
)

// pointToPos converts a stored geom.Point (lon/lat order) to a geo.Pos
func pointToPos(p geom.Point) geo.Pos {
	xy, ok := p.XY()
	if !ok {
		return geo.Pos{}
	}
	return geo.Pos{Lat: xy.Y, Lon: xy.X}
}

// VoyageToCore converts a GORM Voyage to a core.Voyage.
func VoyageToCore(v model.Voyage) core.Voyage {
	var attrs map[string]any
	if len(v.Attrs) > 0 {
		_ = json.Unmarshal(v.Attrs, &attrs)
	}

	return core.Voyage{
		ID:          v.ID,
		Name:        v.Name,
		Tag:         v.Tag,
		StartTime:   v.StartTime,
		TickSeconds: v.TickSeconds,
		ChartName:   v.ChartName,
		Attrs:       attrs,
	}
}

// BoatToCore converts a GORM Boat to a core.BoatRecord.
// GORM Boat.BoatID maps to core BoatRecord.ID.
func BoatToCore(b model.Boat) core.BoatRecord {
	pos := pointToPos(b.StartPosition)

	return core.BoatRecord{
		ID:       b.BoatID,
		JoinTime: b.JoinTime,
		Name:     b.Name,
		Class:    b.Class,
		StartLat: pos.Lat,
		StartLon: pos.Lon,
	}
}

// TrackPointToCore converts a GORM TrackPoint to a core.TrackPoint.
// BoatObjectID in GORM maps directly to BoatID in core.
func TrackPointToCore(tp model.TrackPoint) core.TrackPoint {
	return core.TrackPoint{
		BoatID:            tp.BoatObjectID,
		Time:              tp.Time,
		Tick:              uint64(tp.Tick),
		Position:          pointToPos(tp.Position),
		Heading:           float64(tp.Heading),
		SpeedMps:          float64(tp.SpeedMps),
		DesiredCourse:     float64(tp.DesiredCourse),
		DistanceTravelled: float64(tp.DistanceTravelled),
		SailsDown:         tp.SailsDown,
		MovingToSea:       tp.MovingToSea,
		Stopped:           tp.Stopped,
		WindAngle:         float64(tp.WindAngle),
		WindMps:           float64(tp.WindMps),
		CurrentAngle:      float64(tp.CurrentAngle),
		CurrentMps:        float64(tp.CurrentMps),
		IcePct:            float64(tp.IcePct),
		OceanDataValid:    tp.OceanDataValid,
	}
}
