package event

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"pointhunt/internal/domain/model"
)

// fakeTx captures after-commit hooks the way the real unit of work does:
// commit runs them in order, rollback drops them.
type fakeTx struct {
	hooks []func()
}

func (t *fakeTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return nil, nil
}
func (t *fakeTx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return nil, nil
}
func (t *fakeTx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return nil
}
func (t *fakeTx) AfterCommit(fn func()) { t.hooks = append(t.hooks, fn) }
func (t *fakeTx) commit() {
	for _, fn := range t.hooks {
		fn()
	}
}

type capturedDelivery struct {
	gameID  string
	payload []byte
}

type captureSink struct {
	mu         sync.Mutex
	deliveries []capturedDelivery
	err        error
}

func (s *captureSink) Deliver(ctx context.Context, gameID string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.deliveries = append(s.deliveries, capturedDelivery{gameID: gameID, payload: payload})
	return nil
}

func (s *captureSink) all() []capturedDelivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]capturedDelivery(nil), s.deliveries...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(noopWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestPublishWaitsForCommit(t *testing.T) {
	sink := &captureSink{}
	b := NewBroadcaster(16, discardLogger(), sink)

	tx := &fakeTx{}
	b.GameStatus(tx, "g1", GameStatusData{Status: model.GameStatusActive})

	// Nothing may reach a sink before the transaction commits.
	time.Sleep(20 * time.Millisecond)
	if got := sink.all(); len(got) != 0 {
		t.Fatalf("delivery before commit: %d envelopes", len(got))
	}

	tx.commit()
	b.Close()

	got := sink.all()
	if len(got) != 1 {
		t.Fatalf("expected exactly one delivery, got %d", len(got))
	}
	if got[0].gameID != "g1" {
		t.Errorf("wrong game id: %s", got[0].gameID)
	}
}

func TestRollbackDeliversNothing(t *testing.T) {
	sink := &captureSink{}
	b := NewBroadcaster(16, discardLogger(), sink)

	tx := &fakeTx{}
	b.Notification(tx, model.Notification{GameID: "g1", Title: "hello"})
	b.Leaderboard(tx, "g1", nil)
	// The transaction rolls back: hooks are never run.

	b.Close()
	if got := sink.all(); len(got) != 0 {
		t.Errorf("rolled-back transaction leaked %d envelopes", len(got))
	}
}

func TestCommitOrderPreserved(t *testing.T) {
	sink := &captureSink{}
	b := NewBroadcaster(16, discardLogger(), sink)

	tx := &fakeTx{}
	b.GameStatus(tx, "g1", GameStatusData{Status: model.GameStatusActive})
	b.Notification(tx, model.Notification{GameID: "g1"})
	b.Leaderboard(tx, "g1", nil)
	tx.commit()
	b.Close()

	got := sink.all()
	if len(got) != 3 {
		t.Fatalf("expected 3 deliveries, got %d", len(got))
	}
	wantOrder := []Type{TypeGameStatus, TypeNotification, TypeLeaderboard}
	for i, d := range got {
		var env Envelope
		if err := json.Unmarshal(d.payload, &env); err != nil {
			t.Fatalf("delivery %d is not a valid envelope: %v", i, err)
		}
		if env.Type != wantOrder[i] {
			t.Errorf("delivery %d: got %s, want %s", i, env.Type, wantOrder[i])
		}
		if env.Version != EnvelopeVersion {
			t.Errorf("delivery %d: version %d", i, env.Version)
		}
	}
}

func TestPublishWithoutTransactionIsImmediate(t *testing.T) {
	sink := &captureSink{}
	b := NewBroadcaster(16, discardLogger(), sink)

	b.Leaderboard(nil, "g1", []model.LeaderboardEntry{{TeamID: "red", Rank: 1}})
	b.Close()

	if got := sink.all(); len(got) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(got))
	}
}

func TestFailingSinkDoesNotStopOthers(t *testing.T) {
	broken := &captureSink{err: errors.New("sink down")}
	healthy := &captureSink{}
	b := NewBroadcaster(16, discardLogger(), broken, healthy)

	b.GameStatus(nil, "g1", GameStatusData{Status: model.GameStatusCompleted})
	b.Close()

	if got := healthy.all(); len(got) != 1 {
		t.Errorf("healthy sink should still receive the envelope, got %d", len(got))
	}
}

func TestFullQueueDropsInsteadOfBlocking(t *testing.T) {
	// A sink that blocks until released, so the queue backs up.
	release := make(chan struct{})
	blocking := sinkFunc(func(ctx context.Context, gameID string, payload []byte) error {
		<-release
		return nil
	})
	b := NewBroadcaster(1, discardLogger(), blocking)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			b.Leaderboard(nil, "g1", nil)
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publishing blocked on a full queue")
	}
	close(release)
	b.Close()
}

type sinkFunc func(ctx context.Context, gameID string, payload []byte) error

func (f sinkFunc) Deliver(ctx context.Context, gameID string, payload []byte) error {
	return f(ctx, gameID, payload)
}
