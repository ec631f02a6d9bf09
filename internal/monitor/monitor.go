package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/windward-sim/windward/internal/fleet"
	"github.com/windward-sim/windward/internal/influx"
	"github.com/windward-sim/windward/internal/logging"
	"github.com/windward-sim/windward/internal/model"
	"github.com/windward-sim/windward/internal/voyage"
	"github.com/windward-sim/windward/internal/worker"
)

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	DB              *gorm.DB
	LogManager      *logging.SlogManager
	VoyageContext   *voyage.Context
	WorkerManager   *worker.Manager
	Fleet           *fleet.Service
	Influx          *influx.Manager
	StatusDir       string
	IsDatabaseValid func() bool
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetProgramStatus returns the current program status
func (s *Service) GetProgramStatus() (output []string, perfModel model.SimPerformance) {
	v := s.deps.VoyageContext.Get()

	perf := model.SimPerformance{
		Time:                time.Now(),
		VoyageID:            v.ID,
		FleetSize:           uint16(s.deps.Fleet.Size()),
		TrackQueueLength:    uint16(s.deps.WorkerManager.QueueLength()),
		LastWriteDurationMs: float32(s.deps.WorkerManager.GetLastWriteDuration().Milliseconds()),
	}

	status := map[string]any{
		"voyage":              v.Name,
		"tick":                s.deps.Fleet.CurrentTick(),
		"fleetSize":           perf.FleetSize,
		"trackQueueLength":    perf.TrackQueueLength,
		"lastWriteDurationMs": perf.LastWriteDurationMs,
	}

	statusStr, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		statusStr = []byte(fmt.Sprintf(`{"error": "%s"}`, err))
	}
	output = append(output, string(statusStr))

	return output, perf
}

// ValidateHypertables validates and creates TimescaleDB hypertables
func (s *Service) ValidateHypertables(tables map[string][]string) error {
	functionName := "validateHypertables"

	all := []any{}
	s.deps.DB.Exec(`SELECT x.* FROM timescaledb_information.hypertables`).Scan(&all)
	for _, row := range all {
		s.deps.LogManager.WriteLog(functionName, fmt.Sprintf(`hypertable row: %v`, row), "DEBUG")
	}

	for table := range tables {
		hypertable := any(nil)
		s.deps.DB.Exec(`SELECT x.* FROM timescaledb_information.hypertables WHERE hypertable_name = ?`, table).Scan(&hypertable)
		if hypertable != nil {
			s.deps.LogManager.WriteLog(functionName, fmt.Sprintf(`Table %s is already configured`, table), "INFO")
			continue
		}

		queryCreateHypertable := fmt.Sprintf(`
				SELECT create_hypertable('%s', 'time', chunk_time_interval => interval '1 day', if_not_exists => true);
			`, table)
		err := s.deps.DB.Exec(queryCreateHypertable).Error
		if err != nil {
			s.deps.LogManager.WriteLog(functionName, fmt.Sprintf(`Failed to create hypertable for %s. Err: %s`, table, err), "ERROR")
			return err
		}
		s.deps.LogManager.WriteLog(functionName, fmt.Sprintf(`Created hypertable for %s`, table), "INFO")

		queryCompressHypertable := fmt.Sprintf(`
				ALTER TABLE %s SET (
					timescaledb.compress,
					timescaledb.compress_segmentby = ?);
			`, table)
		err = s.deps.DB.Exec(
			queryCompressHypertable,
			strings.Join(tables[table], ","),
		).Error
		if err != nil {
			s.deps.LogManager.WriteLog(functionName, fmt.Sprintf(`Failed to enable compression for %s. Err: %s`, table, err), "ERROR")
			return err
		}
		s.deps.LogManager.WriteLog(functionName, fmt.Sprintf(`Enabled hypertable compression for %s`, table), "INFO")

		queryCompressAfterHypertable := fmt.Sprintf(`
				SELECT add_compression_policy(
					'%s',
					compress_after => interval '14 day');
			`, table)
		err = s.deps.DB.Exec(queryCompressAfterHypertable).Error
		if err != nil {
			s.deps.LogManager.WriteLog(functionName, fmt.Sprintf(`Failed to set compress_after for %s. Err: %s`, table, err), "ERROR")
			return err
		}
		s.deps.LogManager.WriteLog(functionName, fmt.Sprintf(`Set compress_after for %s`, table), "INFO")
	}
	return nil
}

// recordPerformance writes a perf sample to the database and, when an
// InfluxDB manager is wired, to the sim_performance bucket.
func (s *Service) recordPerformance(perf *model.SimPerformance) {
	logger := s.deps.LogManager.Logger()

	if s.deps.IsDatabaseValid != nil && s.deps.IsDatabaseValid() {
		if err := s.deps.DB.Create(perf).Error; err != nil {
			logger.Error("Error writing perf sample to database", "error", err)
		}
	}

	if s.deps.Influx != nil && (s.deps.Influx.IsValid || s.deps.Influx.BackupWriter != nil) {
		point := influx.PerformanceToInflux(s.deps.VoyageContext.Get().Name, perf)
		if err := s.deps.Influx.WritePoint(context.Background(), influx.BucketSimPerformance, point); err != nil {
			logger.Error("Error writing perf sample to InfluxDB", "error", err)
		}
	}
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		logger := s.deps.LogManager.Logger()
		logger.Debug("Starting status monitor goroutine", "function", "startStatusMonitor")

		statusFile, err := os.Create(s.deps.StatusDir + "/status.txt")
		if err != nil {
			logger.Error("Error creating status file", "error", err)
		}
		defer statusFile.Close()

		for {
			select {
			case <-s.stopChan:
				return
			default:
				time.Sleep(1000 * time.Millisecond)

				v := s.deps.VoyageContext.Get()
				if v.ID == 0 {
					continue
				}

				statusStr, perfModel := s.GetProgramStatus()

				if statusFile != nil {
					statusFile.Truncate(0)
					statusFile.Seek(0, 0)
					for _, line := range statusStr {
						statusFile.WriteString(line + "\n")
					}
				}

				s.recordPerformance(&perfModel)
			}
		}
	}()

	return nil
}

// Stop stops the status monitor
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		close(s.stopChan)
	}
}
