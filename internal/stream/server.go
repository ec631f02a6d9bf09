// Package stream serves a live WebSocket feed of fleet activity.
package stream

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/windward-sim/windward/internal/channel"
	"github.com/windward-sim/windward/internal/logging"
	"github.com/windward-sim/windward/pkg/core"
	"github.com/windward-sim/windward/pkg/streaming"
)

// clientBufferSize is the per-client envelope buffer. A client that falls
// this far behind is disconnected instead of stalling the tick loop.
const clientBufferSize = 256

// Dependencies holds the external services the server needs.
type Dependencies struct {
	LogManager *logging.SlogManager
}

// Server fans out feed envelopes to connected WebSocket clients.
type Server struct {
	deps     Dependencies
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]channel.Channel[streaming.Envelope]

	httpServer *http.Server
}

// NewServer creates a feed server.
func NewServer(deps Dependencies) *Server {
	return &Server{
		deps: deps,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]channel.Channel[streaming.Envelope]),
	}
}

// Handler returns the HTTP handler that upgrades connections to the feed.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.deps.LogManager.Logger().Error("Failed to upgrade feed connection", "error", err)
			return
		}

		ch := s.register(conn)
		s.deps.LogManager.Logger().Info("Feed client connected", "remote", conn.RemoteAddr().String())

		go s.writePump(conn, ch)

		// Read loop only detects client close; the feed is one-way.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					s.unregister(conn)
					return
				}
			}
		}()
	})
}

func (s *Server) register(conn *websocket.Conn) channel.Channel[streaming.Envelope] {
	ch := channel.New[streaming.Envelope](clientBufferSize)
	s.mu.Lock()
	s.clients[conn] = ch
	s.mu.Unlock()
	return ch
}

func (s *Server) unregister(conn *websocket.Conn) {
	s.mu.Lock()
	ch, ok := s.clients[conn]
	if ok {
		delete(s.clients, conn)
	}
	s.mu.Unlock()

	if ok {
		ch.Close()
		conn.Close()
	}
}

func (s *Server) writePump(conn *websocket.Conn, ch channel.Channel[streaming.Envelope]) {
	for env := range ch.Receive() {
		if err := conn.WriteJSON(env); err != nil {
			s.unregister(conn)
			return
		}
	}
}

// Publish sends an envelope to every connected client. Clients whose buffer
// is full are disconnected.
func (s *Server) Publish(env streaming.Envelope) {
	s.mu.Lock()
	var slow []*websocket.Conn
	for conn, ch := range s.clients {
		if ch.Len() >= clientBufferSize {
			slow = append(slow, conn)
			continue
		}
		ch.Send(env)
	}
	s.mu.Unlock()

	for _, conn := range slow {
		s.deps.LogManager.Logger().Warn("Dropping slow feed client", "remote", conn.RemoteAddr().String())
		s.unregister(conn)
	}
}

// PublishVoyageStart announces a new voyage on the feed.
func (s *Server) PublishVoyageStart(v *core.Voyage) error {
	env, err := streaming.NewEnvelope(streaming.TypeStartVoyage, streaming.StartVoyagePayload{Voyage: v})
	if err != nil {
		return err
	}
	s.Publish(env)
	return nil
}

// PublishVoyageEnd announces the end of the voyage.
func (s *Server) PublishVoyageEnd(endTick uint64) error {
	env, err := streaming.NewEnvelope(streaming.TypeEndVoyage, streaming.EndVoyagePayload{EndTick: endTick})
	if err != nil {
		return err
	}
	s.Publish(env)
	return nil
}

// PublishBoatAdded announces a boat joining the fleet.
func (s *Server) PublishBoatAdded(rec core.BoatRecord) error {
	env, err := streaming.NewEnvelope(streaming.TypeAddBoat, streaming.BoatPayload{Boat: rec})
	if err != nil {
		return err
	}
	s.Publish(env)
	return nil
}

// PublishBoatRemoved announces a boat leaving the fleet.
func (s *Server) PublishBoatRemoved(id uint16) error {
	env, err := streaming.NewEnvelope(streaming.TypeRemoveBoat, streaming.RemoveBoatPayload{BoatID: id})
	if err != nil {
		return err
	}
	s.Publish(env)
	return nil
}

// PublishTrackPoint broadcasts one track sample.
func (s *Server) PublishTrackPoint(tp *core.TrackPoint) error {
	env, err := streaming.NewEnvelope(streaming.TypeTrackPoint, tp)
	if err != nil {
		return err
	}
	s.Publish(env)
	return nil
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// ListenAndServe starts an HTTP server exposing the feed at /feed.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/feed", s.Handler())
	s.httpServer = &http.Server{Addr: addr, Handler: mux}
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the HTTP server and disconnects all clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for conn := range s.clients {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		s.unregister(conn)
	}

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
