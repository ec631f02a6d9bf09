// Package fleet owns the simulated vessels and advances them each tick.
package fleet

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/windward-sim/windward/internal/boat"
	"github.com/windward-sim/windward/internal/command"
	"github.com/windward-sim/windward/internal/dispatcher"
	"github.com/windward-sim/windward/internal/logging"
	"github.com/windward-sim/windward/internal/queue"
	"github.com/windward-sim/windward/internal/storage"
	"github.com/windward-sim/windward/internal/voyage"
	"github.com/windward-sim/windward/pkg/core"
	"github.com/windward-sim/windward/pkg/geo"
)

// FeedPublisher receives fleet membership changes for live viewers.
type FeedPublisher interface {
	PublishBoatAdded(core.BoatRecord) error
	PublishBoatRemoved(uint16) error
}

// Dependencies holds all dependencies needed by the fleet service
type Dependencies struct {
	LogManager *logging.SlogManager
	Backend    storage.Backend
	TrackQueue *queue.Queue[core.TrackPoint]
	Env        boat.Environment

	// Feed is optional; when set, boat additions and removals are announced
	// on the live feed.
	Feed FeedPublisher
}

// Service manages the fleet and processes pilot commands
type Service struct {
	deps Dependencies
	ctx  *voyage.Context

	mu      sync.Mutex
	boats   map[uint16]*boat.Boat
	records map[uint16]core.BoatRecord
	nextID  uint16

	tick atomic.Uint64

	ticksTotal metric.Int64Counter
	groundings metric.Int64Counter
	fleetSize  metric.Int64ObservableGauge
}

// NewService creates a new fleet service
func NewService(deps Dependencies, ctx *voyage.Context) (*Service, error) {
	s := &Service{
		deps:    deps,
		ctx:     ctx,
		boats:   make(map[uint16]*boat.Boat),
		records: make(map[uint16]core.BoatRecord),
	}

	m := meter()

	var err error

	s.ticksTotal, err = m.Int64Counter(
		"fleet.ticks",
		metric.WithDescription("Total simulation ticks advanced"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tick counter: %w", err)
	}

	s.groundings, err = m.Int64Counter(
		"fleet.groundings",
		metric.WithDescription("Total boats force-stopped by running out of water"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating grounding counter: %w", err)
	}

	s.fleetSize, err = m.Int64ObservableGauge(
		"fleet.size",
		metric.WithDescription("Current number of boats in the fleet"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fleet size gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			o.ObserveInt64(s.fleetSize, int64(len(s.boats)))
			return nil
		},
		s.fleetSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering fleet size callback: %w", err)
	}

	return s, nil
}

// AddBoat registers a new vessel and reports it to the storage backend.
func (s *Service) AddBoat(name, class string, pos geo.Pos) (core.BoatRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID

	rec := core.BoatRecord{
		ID:       id,
		JoinTime: time.Now(),
		Name:     name,
		Class:    class,
		StartLat: pos.Lat,
		StartLon: pos.Lon,
	}

	s.boats[id] = boat.New(pos.Lat, pos.Lon, class)
	s.records[id] = rec

	if s.deps.Backend != nil {
		if err := s.deps.Backend.AddBoat(&rec); err != nil {
			s.deps.LogManager.Logger().Error("Failed to store boat registration",
				"boat", id, "error", err)
		}
	}

	if s.deps.Feed != nil {
		if err := s.deps.Feed.PublishBoatAdded(rec); err != nil {
			s.deps.LogManager.Logger().Error("Failed to announce boat on feed",
				"boat", id, "error", err)
		}
	}

	s.deps.LogManager.Logger().Info("Boat added",
		"boat", id, "name", name, "class", class, "lat", pos.Lat, "lon", pos.Lon)
	return rec, nil
}

// RemoveBoat drops a vessel from the fleet.
func (s *Service) RemoveBoat(id uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.boats[id]; !ok {
		return fmt.Errorf("unknown boat: %d", id)
	}
	delete(s.boats, id)
	delete(s.records, id)

	if s.deps.Backend != nil {
		if err := s.deps.Backend.RemoveBoat(id); err != nil {
			s.deps.LogManager.Logger().Error("Failed to remove boat from storage",
				"boat", id, "error", err)
		}
	}

	if s.deps.Feed != nil {
		if err := s.deps.Feed.PublishBoatRemoved(id); err != nil {
			s.deps.LogManager.Logger().Error("Failed to announce boat removal on feed",
				"boat", id, "error", err)
		}
	}

	s.deps.LogManager.Logger().Info("Boat removed", "boat", id)
	return nil
}

// StartBoat puts a stopped vessel under way.
func (s *Service) StartBoat(id uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.boats[id]
	if !ok {
		return fmt.Errorf("unknown boat: %d", id)
	}
	b.Start()
	return nil
}

// StopBoat orders a vessel to stop.
func (s *Service) StopBoat(id uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.boats[id]
	if !ok {
		return fmt.Errorf("unknown boat: %d", id)
	}
	b.Stop()
	return nil
}

// SetCourse changes a vessel's desired course.
func (s *Service) SetCourse(id uint16, course float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.boats[id]
	if !ok {
		return fmt.Errorf("unknown boat: %d", id)
	}
	b.SetDesiredCourse(course)
	return nil
}

// SetSails raises or lowers a vessel's sails.
func (s *Service) SetSails(id uint16, down bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.boats[id]
	if !ok {
		return fmt.Errorf("unknown boat: %d", id)
	}
	b.SetSailsDown(down)
	return nil
}

// Boat returns a copy of the vessel's current state.
func (s *Service) Boat(id uint16) (boat.Boat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.boats[id]
	if !ok {
		return boat.Boat{}, false
	}
	return *b, true
}

// Size returns the number of boats in the fleet.
func (s *Service) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.boats)
}

// CurrentTick returns the number of ticks advanced so far.
func (s *Service) CurrentTick() uint64 {
	return s.tick.Load()
}

// Tick advances every vessel by dt seconds and queues a track point per boat.
// Boats are advanced in ID order so runs with a fixed seed are reproducible.
func (s *Service) Tick(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tick := s.tick.Add(1)
	now := time.Now()

	ids := make([]uint16, 0, len(s.boats))
	for id := range s.boats {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		b := s.boats[id]

		wasUnderway := !b.Stopped
		b.Advance(&s.deps.Env, dt)

		if wasUnderway && b.Stopped {
			s.groundings.Add(context.Background(), 1,
				metric.WithAttributes(attribute.Int("boat", int(id))))
			s.deps.LogManager.Logger().Warn("Boat force-stopped",
				"boat", id, "lat", b.Pos.Lat, "lon", b.Pos.Lon, "tick", tick)
		}

		s.deps.TrackQueue.Push(s.snapshot(id, b, tick, now))
	}

	s.ticksTotal.Add(context.Background(), 1)
}

// snapshot captures one vessel's state plus the environment at its position.
func (s *Service) snapshot(id uint16, b *boat.Boat, tick uint64, now time.Time) core.TrackPoint {
	wind := s.deps.Env.Weather.WindAt(b.Pos)
	od, valid := s.deps.Env.Ocean.At(b.Pos)

	return core.TrackPoint{
		BoatID:            id,
		Time:              now,
		Tick:              tick,
		Position:          b.Pos,
		Heading:           b.Vel.Angle,
		SpeedMps:          b.Vel.Mag,
		DesiredCourse:     b.DesiredCourse,
		DistanceTravelled: b.DistanceTravelled,
		SailsDown:         b.SailsDown,
		MovingToSea:       b.MovingToSea,
		Stopped:           b.Stopped,
		WindAngle:         wind.Angle,
		WindMps:           wind.Mag,
		CurrentAngle:      od.Current.Angle,
		CurrentMps:        od.Current.Mag,
		IcePct:            od.IcePct,
		OceanDataValid:    valid,
	}
}

// Register binds the fleet's command handlers to the dispatcher.
func (s *Service) Register(d *dispatcher.Dispatcher) {
	d.Register(command.VerbAdd, func(e dispatcher.Event) (any, error) {
		rec, err := s.AddBoat(e.Cmd.Name, e.Cmd.Class, e.Cmd.Position)
		if err != nil {
			return nil, err
		}
		return rec.ID, nil
	}, dispatcher.Logged())

	d.Register(command.VerbRemove, func(e dispatcher.Event) (any, error) {
		return nil, s.RemoveBoat(e.Cmd.BoatID)
	}, dispatcher.Logged())

	d.Register(command.VerbStart, func(e dispatcher.Event) (any, error) {
		return nil, s.StartBoat(e.Cmd.BoatID)
	})

	d.Register(command.VerbStop, func(e dispatcher.Event) (any, error) {
		return nil, s.StopBoat(e.Cmd.BoatID)
	})

	d.Register(command.VerbCourse, func(e dispatcher.Event) (any, error) {
		return nil, s.SetCourse(e.Cmd.BoatID, e.Cmd.Course)
	})

	d.Register(command.VerbSailsUp, func(e dispatcher.Event) (any, error) {
		return nil, s.SetSails(e.Cmd.BoatID, false)
	})

	d.Register(command.VerbSailsDown, func(e dispatcher.Event) (any, error) {
		return nil, s.SetSails(e.Cmd.BoatID, true)
	})
}
