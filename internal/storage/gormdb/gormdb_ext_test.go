package gormdb_test

import (
	"github.com/windward-sim/windward/internal/storage"
	"github.com/windward-sim/windward/internal/storage/gormdb"
)

// Compile-time interface check
var _ storage.Backend = (*gormdb.Backend)(nil)
