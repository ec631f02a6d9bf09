// internal/storage/factory.go
package storage

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/windward-sim/windward/internal/cache"
	"github.com/windward-sim/windward/internal/config"
	"github.com/windward-sim/windward/internal/logging"
	"github.com/windward-sim/windward/internal/storage/gormdb"
	"github.com/windward-sim/windward/internal/storage/memory"
)

// NewBackend creates a storage backend based on configuration.
// db may be nil for backends that do not need a database.
func NewBackend(cfg config.StorageConfig, db *gorm.DB, logManager *logging.SlogManager) (Backend, error) {
	switch cfg.Type {
	case "gorm":
		if db == nil {
			return nil, fmt.Errorf("gorm storage requires a database connection")
		}
		return gormdb.New(gormdb.Dependencies{
			DB:         db,
			BoatCache:  cache.NewBoatCache(),
			LogManager: logManager,
		}, cfg.Gorm), nil
	case "memory":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
