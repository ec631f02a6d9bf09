// pkg/core/voyage.go
package core

import "time"

// Voyage represents one simulation session: the period between the daemon
// opening a storage backend and closing it.
type Voyage struct {
	ID             uint
	Name           string
	ServerName     string
	StartTime      time.Time
	TickSeconds    float64
	ChartName      string
	EngineVersion  string
	Tag            string
	BoatCount      uint16
	WeatherSource  string
	OceanSource    string
	Attrs          map[string]any
}

// BoatRecord identifies one vessel within a voyage.
// ID is the fleet's identifier for the boat, assigned at registration.
type BoatRecord struct {
	ID        uint16
	JoinTime  time.Time
	Name      string
	Class     string
	StartLat  float64
	StartLon  float64
}
