package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windward-sim/windward/internal/model"
)

func newTestManager(t *testing.T) *Manager {
	m := NewManager(zerolog.Nop())
	db, err := m.GetSqliteDB("")
	require.NoError(t, err)
	m.DB = db
	m.IsValid = true
	m.ShouldSaveLocal = true
	return m
}

func TestSetup_CreatesSchema(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.Setup())

	assert.True(t, m.DB.Migrator().HasTable(&model.Voyage{}))
	assert.True(t, m.DB.Migrator().HasTable(&model.Boat{}))
	assert.True(t, m.DB.Migrator().HasTable(&model.TrackPoint{}))

	var info model.FleetInfo
	require.NoError(t, m.DB.First(&info).Error)
	assert.Equal(t, "Windward", info.FleetName)
}

func TestSetup_Idempotent(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.Setup())
	require.NoError(t, m.Setup())

	var count int64
	require.NoError(t, m.DB.Model(&model.FleetInfo{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetSqliteDB_FileBacked(t *testing.T) {
	m := NewManager(zerolog.Nop())
	path := filepath.Join(t.TempDir(), "windward.db")

	db, err := m.GetSqliteDB(path)
	require.NoError(t, err)
	require.NotNil(t, db)

	require.NoError(t, db.Exec("CREATE TABLE smoke (id INTEGER)").Error)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestFallbackToSqlite_SetsDumpPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fallback.db")
	viper.Set("db.sqlitePath", path)
	t.Cleanup(func() { viper.Set("db.sqlitePath", nil) })

	m := NewManager(zerolog.Nop())
	require.NoError(t, m.fallbackToSqlite())

	assert.True(t, m.ShouldSaveLocal)
	assert.True(t, m.IsValid)
	assert.Equal(t, path, m.SqliteFilePath)

	require.NoError(t, m.Setup())
	require.NoError(t, m.DumpMemoryToDisk())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestDumpMemoryToDisk_NoPath(t *testing.T) {
	m := newTestManager(t)

	assert.Error(t, m.DumpMemoryToDisk())
}

func TestDumpMemoryToDisk(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Setup())

	m.SqliteFilePath = filepath.Join(t.TempDir(), "dump.db")
	require.NoError(t, m.DumpMemoryToDisk())

	info, err := os.Stat(m.SqliteFilePath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
