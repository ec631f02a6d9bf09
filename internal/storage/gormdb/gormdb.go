// Package gormdb implements the storage.Backend interface using GORM
// with internal queues and a background DB writer goroutine.
package gormdb

import (
	"fmt"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"github.com/windward-sim/windward/internal/cache"
	"github.com/windward-sim/windward/internal/config"
	"github.com/windward-sim/windward/internal/logging"
	"github.com/windward-sim/windward/internal/model"
	"github.com/windward-sim/windward/internal/model/convert"
	"github.com/windward-sim/windward/internal/queue"
	"github.com/windward-sim/windward/pkg/core"
)

const defaultBatchInterval = 2 * time.Second

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB         *gorm.DB
	BoatCache  *cache.BoatCache
	LogManager *logging.SlogManager
}

// queues holds the write queues for batch DB insertion.
type queues struct {
	Boats       *queue.Queue[model.Boat]
	TrackPoints *queue.Queue[model.TrackPoint]
}

func newQueues() *queues {
	return &queues{
		Boats:       queue.New[model.Boat](),
		TrackPoints: queue.New[model.TrackPoint](),
	}
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	deps          Dependencies
	cfg           config.GormConfig
	queues        *queues
	voyageID      atomic.Uint64
	lastWriteNs   atomic.Int64
	stopChan      chan struct{}
	dbReady       bool
	batchInterval time.Duration
}

// New creates a new GORM storage backend.
func New(deps Dependencies, cfg config.GormConfig) *Backend {
	interval := cfg.BatchInterval
	if interval <= 0 {
		interval = defaultBatchInterval
	}
	return &Backend{
		deps:          deps,
		cfg:           cfg,
		batchInterval: interval,
	}
}

// Init creates internal queues, runs schema migration, and starts the DB writer goroutine.
func (b *Backend) Init() error {
	b.queues = newQueues()
	b.stopChan = make(chan struct{})

	if b.deps.DB == nil {
		return fmt.Errorf("gorm backend requires a database connection")
	}

	if err := b.setupDB(); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	b.dbReady = true

	b.startDBWriter()
	return nil
}

// setupDB migrates tables and creates default fleet settings if they don't exist.
func (b *Backend) setupDB() error {
	db := b.deps.DB
	log := b.deps.LogManager

	if !db.Migrator().HasTable(&model.FleetInfo{}) {
		if err := db.AutoMigrate(&model.FleetInfo{}); err != nil {
			log.WriteLog("setupDB", fmt.Sprintf("Failed to create fleet_info table: %s", err), "ERROR")
			return fmt.Errorf("failed to auto-migrate FleetInfo: %w", err)
		}
		if err := db.Create(&model.FleetInfo{
			FleetName:        "Windward",
			FleetDescription: "Windward fleet simulation",
		}).Error; err != nil {
			return fmt.Errorf("failed to create fleet_info entry: %w", err)
		}
	}

	if err := db.AutoMigrate(model.DatabaseModels...); err != nil {
		log.WriteLog("setupDB", fmt.Sprintf("Failed to migrate schema: %s", err), "ERROR")
		return fmt.Errorf("failed to auto-migrate models: %w", err)
	}

	return nil
}

// Close stops the DB writer after a final flush.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
	}
	if b.dbReady {
		b.flush()
	}
	return nil
}

// StartVoyage inserts a new voyage row and stores its ID for the writer.
func (b *Backend) StartVoyage(v *core.Voyage) error {
	gormVoyage := convert.VoyageToGorm(*v)
	gormVoyage.ID = 0

	if err := b.deps.DB.Create(&gormVoyage).Error; err != nil {
		return fmt.Errorf("failed to insert new voyage: %w", err)
	}

	// Assign the DB-generated ID back to the core type
	v.ID = gormVoyage.ID
	b.voyageID.Store(uint64(gormVoyage.ID))

	b.deps.BoatCache.Reset()
	return nil
}

// SetVoyageID sets the current voyage ID for the DB writer (used by CLI tools).
func (b *Backend) SetVoyageID(id uint) {
	b.voyageID.Store(uint64(id))
}

// EndVoyage stamps the voyage end time after a final flush.
func (b *Backend) EndVoyage() error {
	b.flush()

	id := uint(b.voyageID.Load())
	if id == 0 {
		return fmt.Errorf("no voyage in progress")
	}
	return b.deps.DB.Model(&model.Voyage{}).
		Where("id = ?", id).
		Update("end_time", time.Now()).Error
}

// AddBoat converts a boat record to GORM and pushes it to the write queue.
func (b *Backend) AddBoat(rec *core.BoatRecord) error {
	gormObj := convert.BoatToGorm(*rec, uint(b.voyageID.Load()))
	b.queues.Boats.Push(gormObj)
	b.deps.BoatCache.Add(*rec)
	return nil
}

// RemoveBoat soft-deletes the registration synchronously. Removal is
// low-volume and must not race a later re-registration of the same ID.
func (b *Backend) RemoveBoat(id uint16) error {
	b.deps.BoatCache.Remove(id)
	return b.deps.DB.
		Where("voyage_id = ? AND boat_id = ?", uint(b.voyageID.Load()), id).
		Delete(&model.Boat{}).Error
}

// RecordTrackPoint converts and queues a track point.
func (b *Backend) RecordTrackPoint(tp *core.TrackPoint) error {
	if _, ok := b.deps.BoatCache.Get(tp.BoatID); !ok {
		return fmt.Errorf("track point for unknown boat: %d", tp.BoatID)
	}
	gormObj := convert.TrackPointToGorm(*tp, uint(b.voyageID.Load()))
	b.queues.TrackPoints.Push(gormObj)
	return nil
}

// GetLastWriteDuration reports how long the most recent batch write took.
func (b *Backend) GetLastWriteDuration() time.Duration {
	return time.Duration(b.lastWriteNs.Load())
}

// QueueLength reports how many track points are waiting to be written.
func (b *Backend) QueueLength() int {
	if b.queues == nil {
		return 0
	}
	return b.queues.TrackPoints.Len()
}

// writeQueue writes all items from a queue to the database in a transaction.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log func(string, string, string), prepare func([]T)) {
	if q.Empty() {
		return
	}

	tx := db.Begin()
	items := q.GetAndEmpty()
	if prepare != nil {
		prepare(items)
	}
	if err := tx.Create(&items).Error; err != nil {
		log(":DB:WRITER:", fmt.Sprintf("Error creating %s: %v", name, err), "ERROR")
		tx.Rollback()
		q.Push(items...)
		return
	}

	tx.Commit()
}

// flush drains all queues into the DB once.
func (b *Backend) flush() {
	log := b.deps.LogManager.WriteLog
	voyageID := uint(b.voyageID.Load())

	stampBoats := func(items []model.Boat) {
		for i := range items {
			items[i].VoyageID = voyageID
		}
	}
	stampTrackPoints := func(items []model.TrackPoint) {
		for i := range items {
			items[i].VoyageID = voyageID
		}
	}

	start := time.Now()
	writeQueue(b.deps.DB, b.queues.Boats, "boats", log, stampBoats)
	writeQueue(b.deps.DB, b.queues.TrackPoints, "track points", log, stampTrackPoints)
	b.lastWriteNs.Store(int64(time.Since(start)))
}

// startDBWriter starts the background goroutine that periodically drains queues into the DB.
func (b *Backend) startDBWriter() {
	go func() {
		for {
			select {
			case <-b.stopChan:
				return
			default:
			}

			if !b.dbReady {
				time.Sleep(1 * time.Second)
				continue
			}

			b.flush()

			time.Sleep(b.batchInterval)
		}
	}()
}
