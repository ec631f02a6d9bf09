package influx

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windward-sim/windward/internal/model"
	"github.com/windward-sim/windward/pkg/core"
	"github.com/windward-sim/windward/pkg/geo"
)

func TestConnectDisabled(t *testing.T) {
	viper.Set("influx.enabled", false)
	m := NewManager(zerolog.Nop(), filepath.Join(t.TempDir(), "backup.gz"))
	err := m.Connect()
	assert.Error(t, err)
	assert.False(t, m.IsValid)
}

func TestWritePointBackupFallback(t *testing.T) {
	backupPath := filepath.Join(t.TempDir(), "influx_backup.gz")
	file, err := os.OpenFile(backupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	require.NoError(t, err)

	m := NewManager(zerolog.Nop(), backupPath)
	m.BackupWriter = gzip.NewWriter(file)

	point := influxdb2_write.NewPointWithMeasurement("boat_track").
		AddTag("voyage", "baltic trials").
		AddField("speed_mps", 3.5).
		SetTime(time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC))

	err = m.WritePoint(context.Background(), BucketVoyageData, point)
	require.NoError(t, err)
	m.Close()

	raw, err := os.Open(backupPath)
	require.NoError(t, err)
	defer raw.Close()
	gz, err := gzip.NewReader(raw)
	require.NoError(t, err)
	data, err := io.ReadAll(gz)
	require.NoError(t, err)

	line := string(data)
	assert.Contains(t, line, "boat_track")
	assert.Contains(t, line, "voyage=baltic\\ trials")
	assert.Contains(t, line, "speed_mps=3.5")
}

func TestWritePointNoClientNoBackup(t *testing.T) {
	m := NewManager(zerolog.Nop(), "")
	point := influxdb2_write.NewPointWithMeasurement("x").AddField("v", 1)
	err := m.WritePoint(context.Background(), BucketVoyageData, point)
	assert.Error(t, err)
}

func TestTrackPointToInflux(t *testing.T) {
	tp := &core.TrackPoint{
		BoatID:            3,
		Time:              time.Date(2026, 4, 1, 12, 0, 5, 0, time.UTC),
		Tick:              5,
		Position:          geo.Pos{Lat: 57.5, Lon: 11.25},
		Heading:           45,
		SpeedMps:          3.5,
		DesiredCourse:     90,
		DistanceTravelled: 420.5,
		WindAngle:         270,
		WindMps:           8,
	}

	point := TrackPointToInflux("baltic trials", tp)
	line := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)

	assert.True(t, strings.HasPrefix(line, "boat_track,"))
	assert.Contains(t, line, "boat_id=3")
	assert.Contains(t, line, "voyage=baltic\\ trials")
	assert.Contains(t, line, "lat=57.5")
	assert.Contains(t, line, "lon=11.25")
	assert.Contains(t, line, "heading=45")
	assert.Contains(t, line, "sails_down=false")
}

func TestPerformanceToInflux(t *testing.T) {
	perf := &model.SimPerformance{
		Time:                time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
		FleetSize:           12,
		TrackQueueLength:    40,
		LastWriteDurationMs: 2.5,
	}

	point := PerformanceToInflux("baltic trials", perf)
	line := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)

	assert.True(t, strings.HasPrefix(line, "sim_performance,"))
	assert.Contains(t, line, "fleet_size=12i")
	assert.Contains(t, line, "track_queue_length=40i")
	assert.Contains(t, line, "last_write_duration_ms=2.5")
}
