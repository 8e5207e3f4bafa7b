// Package event serializes game state changes into versioned envelopes and
// fans them out to every configured sink. Publication is commit-gated: when
// a transaction is in flight the envelope is queued on its after-commit hook,
// so a rollback means nothing ever left the process.
package event

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"pointhunt/internal/domain/model"
	"pointhunt/internal/platform/database"
)

// Sink receives serialized envelopes for one game. Delivery failures are the
// sink's to report; the broadcaster logs and moves on.
type Sink interface {
	Deliver(ctx context.Context, gameID string, payload []byte) error
}

type delivery struct {
	gameID  string
	payload []byte
}

// Broadcaster owns a single dispatch goroutine. Envelopes are serialized at
// publish time and drained in enqueue order, so two commits observe the same
// ordering on every sink. The queue is bounded; a full queue drops the
// envelope rather than stalling the committing request.
type Broadcaster struct {
	sinks  []Sink
	queue  chan delivery
	logger *slog.Logger

	closeOnce sync.Once
	done      chan struct{}
}

func NewBroadcaster(bufferSize int, logger *slog.Logger, sinks ...Sink) *Broadcaster {
	b := &Broadcaster{
		sinks:  sinks,
		queue:  make(chan delivery, bufferSize),
		logger: logger,
		done:   make(chan struct{}),
	}
	go b.drain()
	return b
}

func (b *Broadcaster) drain() {
	defer close(b.done)
	for d := range b.queue {
		for _, sink := range b.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := sink.Deliver(ctx, d.gameID, d.payload); err != nil {
				b.logger.Warn("event delivery failed", "game_id", d.gameID, "error", err)
			}
			cancel()
		}
	}
}

// Close stops accepting envelopes and waits for the queue to empty.
func (b *Broadcaster) Close() {
	b.closeOnce.Do(func() {
		close(b.queue)
		<-b.done
	})
}

// Publish serializes the envelope and schedules it. With a transaction the
// envelope waits on the after-commit hook; without one it is queued at once.
func (b *Broadcaster) Publish(tx database.Tx, env Envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		b.logger.Error("event marshal failed", "type", env.Type, "game_id", env.GameID, "error", err)
		return
	}
	d := delivery{gameID: env.GameID, payload: payload}
	if tx != nil {
		tx.AfterCommit(func() { b.enqueue(d, env.Type) })
		return
	}
	b.enqueue(d, env.Type)
}

func (b *Broadcaster) enqueue(d delivery, t Type) {
	select {
	case b.queue <- d:
	default:
		b.logger.Warn("event queue full, dropping envelope", "type", t, "game_id", d.gameID)
	}
}

func (b *Broadcaster) envelope(t Type, gameID string, data any) Envelope {
	return Envelope{
		Version:   EnvelopeVersion,
		Type:      t,
		GameID:    gameID,
		EmittedAt: time.Now().UTC(),
		Data:      data,
	}
}

func (b *Broadcaster) Activity(tx database.Tx, e model.ActivityEvent) {
	b.Publish(tx, b.envelope(TypeActivity, e.GameID, e))
}

func (b *Broadcaster) Notification(tx database.Tx, n model.Notification) {
	b.Publish(tx, b.envelope(TypeNotification, n.GameID, n))
}

func (b *Broadcaster) Leaderboard(tx database.Tx, gameID string, entries []model.LeaderboardEntry) {
	b.Publish(tx, b.envelope(TypeLeaderboard, gameID, LeaderboardData{Entries: entries}))
}

func (b *Broadcaster) TeamLocation(tx database.Tx, loc model.TeamLocation) {
	b.Publish(tx, b.envelope(TypeLocation, loc.GameID, loc))
}

func (b *Broadcaster) GameStatus(tx database.Tx, gameID string, data GameStatusData) {
	b.Publish(tx, b.envelope(TypeGameStatus, gameID, data))
}

func (b *Broadcaster) SubmissionStatus(tx database.Tx, gameID string, data SubmissionStatusData) {
	b.Publish(tx, b.envelope(TypeSubmissionStatus, gameID, data))
}
