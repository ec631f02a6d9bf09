// internal/storage/storage.go
package storage

import "github.com/windward-sim/windward/pkg/core"

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Voyage management
	StartVoyage(v *core.Voyage) error
	EndVoyage() error

	// Boat registration
	AddBoat(b *core.BoatRecord) error
	RemoveBoat(id uint16) error

	// State recording
	RecordTrackPoint(tp *core.TrackPoint) error
}

// Uploadable is an optional interface for storage backends that produce
// files suitable for upload to a replay web frontend.
type Uploadable interface {
	GetExportedFilePath() string
	GetExportMetadata() core.UploadMetadata
}
