package convert

import (
	"encoding/json"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"

	"github.com/windward-sim/windward/internal/model"
	"github.com/windward-sim/windward/pkg/core"
	"github.com/windward-sim/windward/pkg/geo"
)

// posToPoint converts a geo.Pos to a geom.Point in lon/lat order
func posToPoint(p geo.Pos) geom.Point {
	return geom.NewPoint(geom.Coordinates{XY: geom.XY{X: p.Lon, Y: p.Lat}})
}

// VoyageToGorm converts a core.Voyage to its GORM model.
func VoyageToGorm(v core.Voyage) model.Voyage {
	attrs := datatypes.JSON("{}")
	if v.Attrs != nil {
		if raw, err := json.Marshal(v.Attrs); err == nil {
			attrs = datatypes.JSON(raw)
		}
	}

	gv := model.Voyage{
		Name:        v.Name,
		Tag:         v.Tag,
		StartTime:   v.StartTime,
		TickSeconds: v.TickSeconds,
		ChartName:   v.ChartName,
		Attrs:       attrs,
	}
	gv.ID = v.ID
	return gv
}

// BoatToGorm converts a core.BoatRecord to its GORM model.
// Core BoatRecord.ID maps to GORM Boat.BoatID.
func BoatToGorm(b core.BoatRecord, voyageID uint) model.Boat {
	return model.Boat{
		VoyageID:      voyageID,
		BoatID:        b.ID,
		JoinTime:      b.JoinTime,
		Name:          b.Name,
		Class:         b.Class,
		StartPosition: posToPoint(geo.Pos{Lat: b.StartLat, Lon: b.StartLon}),
	}
}

// TrackPointToGorm converts a core.TrackPoint to its GORM model.
func TrackPointToGorm(tp core.TrackPoint, voyageID uint) model.TrackPoint {
	return model.TrackPoint{
		Time:              tp.Time,
		VoyageID:          voyageID,
		Tick:              uint(tp.Tick),
		BoatObjectID:      tp.BoatID,
		Position:          posToPoint(tp.Position),
		Heading:           float32(tp.Heading),
		SpeedMps:          float32(tp.SpeedMps),
		DesiredCourse:     float32(tp.DesiredCourse),
		DistanceTravelled: float32(tp.DistanceTravelled),
		SailsDown:         tp.SailsDown,
		MovingToSea:       tp.MovingToSea,
		Stopped:           tp.Stopped,
		WindAngle:         float32(tp.WindAngle),
		WindMps:           float32(tp.WindMps),
		CurrentAngle:      float32(tp.CurrentAngle),
		CurrentMps:        float32(tp.CurrentMps),
		IcePct:            float32(tp.IcePct),
		OceanDataValid:    tp.OceanDataValid,
	}
}
