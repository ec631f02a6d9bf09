// Package worker drains the fleet's track point queue into the storage backend.
package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/windward-sim/windward/internal/logging"
	"github.com/windward-sim/windward/internal/queue"
	"github.com/windward-sim/windward/internal/storage"
	"github.com/windward-sim/windward/pkg/core"
)

const defaultFlushInterval = 1 * time.Second

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	LogManager    *logging.SlogManager
	TrackQueue    *queue.Queue[core.TrackPoint]
	FlushInterval time.Duration
}

// TrackSink receives each track point as it is flushed. Sinks must not
// block; a slow sink delays the whole flush cycle.
type TrackSink func(*core.TrackPoint)

// Manager periodically flushes queued track points to the backend
type Manager struct {
	deps    Dependencies
	backend storage.Backend
	sinks   []TrackSink

	lastFlushNs atomic.Int64

	mu        sync.Mutex
	isRunning bool
	stopChan  chan struct{}
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies, backend storage.Backend) *Manager {
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = defaultFlushInterval
	}
	return &Manager{
		deps:    deps,
		backend: backend,
	}
}

// AddSink registers an additional consumer of flushed track points, such as
// a live feed or telemetry writer. Not safe to call after Start.
func (m *Manager) AddSink(sink TrackSink) {
	m.sinks = append(m.sinks, sink)
}

// WriteDurationProvider is an optional interface that backends can implement
// to expose their last DB write duration for monitoring.
type WriteDurationProvider interface {
	GetLastWriteDuration() time.Duration
}

// GetLastWriteDuration returns the duration of the backend's last write cycle,
// or the worker's own last flush duration if the backend doesn't report one.
func (m *Manager) GetLastWriteDuration() time.Duration {
	if p, ok := m.backend.(WriteDurationProvider); ok {
		if d := p.GetLastWriteDuration(); d > 0 {
			return d
		}
	}
	return time.Duration(m.lastFlushNs.Load())
}

// QueueLength returns the number of track points waiting to be flushed.
func (m *Manager) QueueLength() int {
	return m.deps.TrackQueue.Len()
}

// Flush drains the queue into the backend once. Points the backend rejects
// are dropped with a log line; re-queueing them would wedge the flush loop
// on a persistent error.
func (m *Manager) Flush() {
	if m.deps.TrackQueue.Empty() {
		return
	}

	start := time.Now()
	points := m.deps.TrackQueue.GetAndEmpty()

	for i := range points {
		if err := m.backend.RecordTrackPoint(&points[i]); err != nil {
			m.deps.LogManager.Logger().Error("Failed to record track point",
				"boat", points[i].BoatID, "tick", points[i].Tick, "error", err)
		}
		for _, sink := range m.sinks {
			sink(&points[i])
		}
	}

	m.lastFlushNs.Store(int64(time.Since(start)))
}

// Start launches the background flush goroutine.
func (m *Manager) Start() error {
	m.mu.Lock()
	if m.isRunning {
		m.mu.Unlock()
		return nil
	}
	m.isRunning = true
	m.stopChan = make(chan struct{})
	m.mu.Unlock()

	go func() {
		ticker := time.NewTicker(m.deps.FlushInterval)
		defer ticker.Stop()

		for {
			select {
			case <-m.stopChan:
				return
			case <-ticker.C:
				m.Flush()
			}
		}
	}()

	return nil
}

// Stop halts the flush goroutine after a final drain.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.isRunning {
		close(m.stopChan)
		m.isRunning = false
	}
	m.mu.Unlock()

	m.Flush()
}

// IsRunning returns whether the flush goroutine is active.
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isRunning
}
