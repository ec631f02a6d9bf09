// internal/storage/memory/memory.go
package memory

import (
	"fmt"
	"sync"

	"github.com/windward-sim/windward/internal/config"
	"github.com/windward-sim/windward/pkg/core"
)

// BoatTrack groups a boat with its recorded time series
type BoatTrack struct {
	Boat  core.BoatRecord
	Track []core.TrackPoint
}

// Backend stores voyage data in memory and exports to JSON
type Backend struct {
	cfg    config.MemoryConfig
	voyage *core.Voyage

	boats map[uint16]*BoatTrack // keyed by boat ID

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:   cfg,
		boats: make(map[uint16]*BoatTrack),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartVoyage begins recording a new voyage
func (b *Backend) StartVoyage(v *core.Voyage) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.voyage = v
	b.boats = make(map[uint16]*BoatTrack)

	return nil
}

// EndVoyage finalizes and exports the voyage data
func (b *Backend) EndVoyage() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.voyage == nil {
		return fmt.Errorf("no voyage in progress")
	}
	return b.exportJSON()
}

// AddBoat registers a new boat
func (b *Backend) AddBoat(rec *core.BoatRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.boats[rec.ID] = &BoatTrack{
		Boat:  *rec,
		Track: make([]core.TrackPoint, 0),
	}
	return nil
}

// RemoveBoat drops a boat's registration. Its recorded track is kept
// so the exported file still contains the portion it sailed.
func (b *Backend) RemoveBoat(id uint16) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.boats[id]; !ok {
		return fmt.Errorf("unknown boat: %d", id)
	}
	return nil
}

// RecordTrackPoint appends a tick snapshot to the boat's track
func (b *Backend) RecordTrackPoint(tp *core.TrackPoint) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	record, ok := b.boats[tp.BoatID]
	if !ok {
		return fmt.Errorf("track point for unknown boat: %d", tp.BoatID)
	}
	record.Track = append(record.Track, *tp)
	return nil
}

// GetExportedFilePath returns the path of the last exported file
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// GetExportMetadata returns upload metadata for the last voyage
func (b *Backend) GetExportMetadata() core.UploadMetadata {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.voyage == nil {
		return core.UploadMetadata{}
	}
	return core.UploadMetadata{
		VoyageName: b.voyage.Name,
		ChartName:  b.voyage.ChartName,
		Tag:        b.voyage.Tag,
		StartTime:  b.voyage.StartTime,
	}
}
