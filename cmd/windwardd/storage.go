package main

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/windward-sim/windward/internal/config"
	"github.com/windward-sim/windward/internal/database"
	"github.com/windward-sim/windward/internal/storage"
)

// initStorage connects the database when the gorm backend is configured and
// builds the storage backend from config.
func initStorage() error {
	storageCfg := config.GetStorageConfig()

	var db *gorm.DB
	if storageCfg.Type == "gorm" {
		dbManager = database.NewManager(zerologConsole())
		if err := dbManager.Connect(); err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		if err := dbManager.Setup(); err != nil {
			return fmt.Errorf("database setup failed: %w", err)
		}
		db = dbManager.DB
		logger.Info("Database connected",
			"sqliteFallback", dbManager.ShouldSaveLocal)
	}

	backend, err := storage.NewBackend(storageCfg, db, slogManager)
	if err != nil {
		return fmt.Errorf("failed to create storage backend: %w", err)
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize storage backend: %w", err)
	}

	storageBackend = backend
	logger.Info("Storage backend initialized", "type", storageCfg.Type)
	return nil
}
