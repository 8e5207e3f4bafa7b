// Package realtime tracks live subscriber connections per game and fans
// envelopes out to them. The hub is transport-agnostic; the websocket layer
// adapts its connections to the Conn interface.
package realtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Conn is one subscriber connection. Send must be safe to call after the
// peer has gone away and should fail promptly when it has.
type Conn interface {
	Send(ctx context.Context, payload []byte) error
	Close() error
}

// Session is the hub's handle for one registered connection. Writes to the
// underlying Conn are serialized through the session mutex so concurrent
// broadcasts cannot interleave frames.
type Session struct {
	conn Conn
	mu   sync.Mutex
}

func (s *Session) send(ctx context.Context, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Send(ctx, payload)
}

type room struct {
	mu       sync.Mutex
	sessions map[*Session]struct{}
}

// Hub maps game ids to their subscriber sets. Rooms lock independently, so
// a slow broadcast in one game never blocks registration in another. A
// connection that fails during broadcast is evicted and closed; the
// remaining deliveries proceed.
type Hub struct {
	rooms       sync.Map // gameID -> *room
	sendTimeout time.Duration
	logger      *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{sendTimeout: 10 * time.Second, logger: logger}
}

func (h *Hub) room(gameID string) *room {
	if r, ok := h.rooms.Load(gameID); ok {
		return r.(*room)
	}
	r, _ := h.rooms.LoadOrStore(gameID, &room{sessions: make(map[*Session]struct{})})
	return r.(*room)
}

// Register adds a connection to a game's subscriber set.
func (h *Hub) Register(gameID string, conn Conn) *Session {
	s := &Session{conn: conn}
	r := h.room(gameID)
	r.mu.Lock()
	r.sessions[s] = struct{}{}
	n := len(r.sessions)
	r.mu.Unlock()
	h.logger.Debug("subscriber registered", "game_id", gameID, "subscribers", n)
	return s
}

// Unregister removes a session. Calling it twice, or for a session already
// evicted by a failed broadcast, is a no-op.
func (h *Hub) Unregister(gameID string, s *Session) {
	r, ok := h.rooms.Load(gameID)
	if !ok {
		return
	}
	rm := r.(*room)
	rm.mu.Lock()
	delete(rm.sessions, s)
	rm.mu.Unlock()
}

// Subscribers reports the current connection count for a game.
func (h *Hub) Subscribers(gameID string) int {
	r, ok := h.rooms.Load(gameID)
	if !ok {
		return 0
	}
	rm := r.(*room)
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return len(rm.sessions)
}

// Deliver fans the payload out to every subscriber of the game, sending to
// each connection concurrently. It satisfies the broadcaster's sink
// interface and never returns an error; per-connection failures evict the
// connection instead.
func (h *Hub) Deliver(ctx context.Context, gameID string, payload []byte) error {
	r, ok := h.rooms.Load(gameID)
	if !ok {
		return nil
	}
	rm := r.(*room)

	rm.mu.Lock()
	targets := make([]*Session, 0, len(rm.sessions))
	for s := range rm.sessions {
		targets = append(targets, s)
	}
	rm.mu.Unlock()

	var g errgroup.Group
	for _, s := range targets {
		s := s
		g.Go(func() error {
			sendCtx, cancel := context.WithTimeout(ctx, h.sendTimeout)
			defer cancel()
			if err := s.send(sendCtx, payload); err != nil {
				h.logger.Debug("evicting dead subscriber", "game_id", gameID, "error", err)
				h.Unregister(gameID, s)
				s.conn.Close()
			}
			return nil
		})
	}
	return g.Wait()
}
