package worker

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windward-sim/windward/internal/logging"
	"github.com/windward-sim/windward/internal/queue"
	"github.com/windward-sim/windward/pkg/core"
)

// recordingBackend captures track points and can be told to fail.
type recordingBackend struct {
	mu     sync.Mutex
	points []core.TrackPoint
	fail   bool
}

func (b *recordingBackend) Init() error                        { return nil }
func (b *recordingBackend) Close() error                       { return nil }
func (b *recordingBackend) StartVoyage(v *core.Voyage) error   { return nil }
func (b *recordingBackend) EndVoyage() error                   { return nil }
func (b *recordingBackend) AddBoat(r *core.BoatRecord) error   { return nil }
func (b *recordingBackend) RemoveBoat(id uint16) error         { return nil }
func (b *recordingBackend) RecordTrackPoint(tp *core.TrackPoint) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return fmt.Errorf("backend down")
	}
	b.points = append(b.points, *tp)
	return nil
}

func (b *recordingBackend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.points)
}

func newTestManager(backend *recordingBackend) (*Manager, *queue.Queue[core.TrackPoint]) {
	q := queue.New[core.TrackPoint]()
	m := NewManager(Dependencies{
		LogManager:    logging.NewSlogManager(),
		TrackQueue:    q,
		FlushInterval: 10 * time.Millisecond,
	}, backend)
	return m, q
}

func TestFlush_DrainsQueue(t *testing.T) {
	backend := &recordingBackend{}
	m, q := newTestManager(backend)

	for i := 0; i < 5; i++ {
		q.Push(core.TrackPoint{BoatID: 1, Tick: uint64(i + 1)})
	}

	m.Flush()

	assert.Equal(t, 0, m.QueueLength())
	assert.Equal(t, 5, backend.count())
	assert.Greater(t, m.GetLastWriteDuration(), time.Duration(0))
}

func TestFlush_EmptyQueueIsNoOp(t *testing.T) {
	backend := &recordingBackend{}
	m, _ := newTestManager(backend)

	m.Flush()

	assert.Equal(t, 0, backend.count())
}

func TestFlush_DropsRejectedPoints(t *testing.T) {
	backend := &recordingBackend{fail: true}
	m, q := newTestManager(backend)

	q.Push(core.TrackPoint{BoatID: 1, Tick: 1})
	m.Flush()

	// Rejected points are not re-queued
	assert.Equal(t, 0, m.QueueLength())
	assert.Equal(t, 0, backend.count())
}

func TestFlush_FeedsSinks(t *testing.T) {
	backend := &recordingBackend{}
	m, q := newTestManager(backend)

	var sunk []uint64
	m.AddSink(func(tp *core.TrackPoint) {
		sunk = append(sunk, tp.Tick)
	})

	q.Push(core.TrackPoint{BoatID: 1, Tick: 1})
	q.Push(core.TrackPoint{BoatID: 1, Tick: 2})
	m.Flush()

	assert.Equal(t, []uint64{1, 2}, sunk)
}

func TestFlush_SinksSeeRejectedPoints(t *testing.T) {
	backend := &recordingBackend{fail: true}
	m, q := newTestManager(backend)

	var sunk int
	m.AddSink(func(*core.TrackPoint) { sunk++ })

	q.Push(core.TrackPoint{BoatID: 1, Tick: 1})
	m.Flush()

	assert.Equal(t, 1, sunk)
}

func TestStartStop_FlushLoop(t *testing.T) {
	backend := &recordingBackend{}
	m, q := newTestManager(backend)

	require.NoError(t, m.Start())
	require.True(t, m.IsRunning())

	// Start is idempotent
	require.NoError(t, m.Start())

	q.Push(core.TrackPoint{BoatID: 1, Tick: 1})

	assert.Eventually(t, func() bool {
		return backend.count() == 1
	}, time.Second, 5*time.Millisecond)

	// Stop performs a final drain
	q.Push(core.TrackPoint{BoatID: 1, Tick: 2})
	m.Stop()

	assert.False(t, m.IsRunning())
	assert.Equal(t, 2, backend.count())
}
