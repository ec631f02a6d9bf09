package model

import (
	"database/sql"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&FleetInfo{},
	&Voyage{},
	&Boat{},
	&TrackPoint{},
	&SimPerformance{},
}

////////////////////////
// SYSTEM MODELS
////////////////////////

// FleetInfo contains group information about the instance
type FleetInfo struct {
	gorm.Model
	FleetName        string `json:"fleetName" gorm:"size:127"` // primary key
	FleetDescription string `json:"fleetDescription" gorm:"size:255"`
	FleetWebsite     string `json:"fleetURL" gorm:"size:255"`
}

func (*FleetInfo) TableName() string {
	return "fleet_infos"
}

// SimPerformance is the model for simulation performance samples
type SimPerformance struct {
	Time                time.Time `json:"time" gorm:"type:timestamptz;index:idx_time"`
	VoyageID            uint      `json:"voyageId" gorm:"index:idx_simperformance_voyage_id"`
	Voyage              Voyage    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:VoyageID;"`
	FleetSize           uint16    `json:"fleetSize"`
	TrackQueueLength    uint16    `json:"trackQueueLength"`
	LastWriteDurationMs float32   `json:"lastWriteDurationMs"`
}

func (*SimPerformance) TableName() string {
	return "sim_performances"
}

////////////////////////
// RECORDING MODELS
////////////////////////

// Voyage is the main model for a recorded simulation run
type Voyage struct {
	gorm.Model
	Name        string         `json:"name" gorm:"size:200"`
	Tag         string         `json:"tag" gorm:"size:127"`
	StartTime   time.Time      `json:"voyageStart" gorm:"type:timestamptz;index:idx_voyage_start"`
	EndTime     sql.NullTime   `json:"voyageEnd" gorm:"type:timestamptz"`
	TickSeconds float64        `json:"tickSeconds" gorm:"default:1.0"`
	ChartName   string         `json:"chartName" gorm:"size:127"`
	Attrs       datatypes.JSON `json:"attrs" gorm:"type:jsonb;default:'{}'"` // Free-form run metadata

	Boats       []Boat
	TrackPoints []TrackPoint
}

func (*Voyage) TableName() string {
	return "voyages"
}

func (v *Voyage) GetOrInsert(db *gorm.DB) (
	created bool,
	err error,
) {
	var existing Voyage
	err = db.Where("name = ? AND start_time = ?", v.Name, v.StartTime).First(&existing).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// insert
			err = db.Create(v).Error
			return true, err
		}
		return false, err
	}
	// overwrite with db record if found
	*v = existing
	return false, nil
}

// Boat is a vessel registered with the fleet
// Uses composite primary key (VoyageID, BoatID) - BoatID is the fleet-assigned sequential ID
type Boat struct {
	VoyageID      uint           `json:"voyageId" gorm:"primaryKey;autoIncrement:false"`
	BoatID        uint16         `json:"boatId" gorm:"primaryKey;autoIncrement:false"` // fleet-assigned sequential ID
	Voyage        Voyage         `gorm:"foreignkey:VoyageID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `json:"deletedAt" gorm:"index"`
	JoinTime      time.Time      `json:"joinTime" gorm:"type:timestamptz;NOT NULL;index:idx_boat_join_time"` // Server time when boat was registered
	JoinTick      uint           `json:"joinTick"`                                                           // Tick number when boat was added
	Name          string         `json:"name" gorm:"size:64"`
	Class         string         `json:"class" gorm:"size:32;default:sloop"` // Polar class used for the speed model
	StartPosition geom.Point     `json:"startPosition"`                      // Position at registration, lon/lat
}

func (*Boat) TableName() string {
	return "boats"
}

func (b *Boat) Get(db *gorm.DB) (err error) {
	err = db.Where(&b).Order(
		"join_time DESC",
	).First(&b).Error
	return err
}

// TrackPoint tracks boat state at a simulation tick
// References Boat by (VoyageID, BoatObjectID) composite FK
type TrackPoint struct {
	ID           uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time         time.Time `json:"time" gorm:"type:timestamptz;"` // Server time when state was recorded
	VoyageID     uint      `json:"voyageId" gorm:"index:idx_trackpoint_voyage_id"`
	Voyage       Voyage    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:VoyageID;"`
	Tick         uint      `json:"tick" gorm:"index:idx_tick"` // Tick number in the simulation timeline
	BoatObjectID uint16    `json:"boatId" gorm:"index:idx_trackpoint_boat_object_id"`
	Boat         Boat      `gorm:"foreignkey:VoyageID,BoatObjectID;references:VoyageID,BoatID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	Position          geom.Point `json:"position"` // lon/lat, EPSG 4326
	Heading           float32    `json:"heading" gorm:"default:0"`
	SpeedMps          float32    `json:"speedMps"`
	DesiredCourse     float32    `json:"desiredCourse"`
	DistanceTravelled float32    `json:"distanceTravelled"`
	SailsDown         bool       `json:"sailsDown" gorm:"default:false"`
	MovingToSea       bool       `json:"movingToSea" gorm:"default:false"`
	Stopped           bool       `json:"stopped" gorm:"default:false"`

	WindAngle      float32 `json:"windAngle"`
	WindMps        float32 `json:"windMps"`
	CurrentAngle   float32 `json:"currentAngle"`
	CurrentMps     float32 `json:"currentMps"`
	IcePct         float32 `json:"icePct"`
	OceanDataValid bool    `json:"oceanDataValid" gorm:"default:false"`
}

func (*TrackPoint) TableName() string {
	return "track_points"
}
