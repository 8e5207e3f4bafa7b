package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"pointhunt/internal/app/event"
	"pointhunt/internal/common"
	"pointhunt/internal/domain/model"
	"pointhunt/internal/domain/repository"
	"pointhunt/internal/platform/database"
)

// memTx and memRunner mimic the real unit of work closely enough for service
// tests: a returned error discards the after-commit hooks, success runs them
// in order.
type memTx struct {
	hooks []func()
}

func (t *memTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return nil, nil
}
func (t *memTx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return nil, nil
}
func (t *memTx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return nil
}
func (t *memTx) AfterCommit(fn func()) { t.hooks = append(t.hooks, fn) }

type memRunner struct{}

func (memRunner) InTx(ctx context.Context, fn func(tx database.Tx) error) error {
	tx := &memTx{}
	if err := fn(tx); err != nil {
		return err
	}
	for _, hook := range tx.hooks {
		hook()
	}
	return nil
}

type fakeGameRepo struct {
	games map[string]*model.Game
}

func newFakeGameRepo() *fakeGameRepo { return &fakeGameRepo{games: map[string]*model.Game{}} }

func (r *fakeGameRepo) Create(ctx context.Context, game *model.Game) error {
	g := *game
	r.games[g.ID] = &g
	return nil
}

func (r *fakeGameRepo) FindByID(ctx context.Context, id string) (*model.Game, error) {
	g, ok := r.games[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (r *fakeGameRepo) ListByCreator(ctx context.Context, userID string) ([]model.Game, error) {
	var out []model.Game
	for _, g := range r.games {
		if g.CreatedByID == userID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *fakeGameRepo) UpdateStatus(ctx context.Context, q database.Querier, id string, status model.GameStatus, startDate, endDate *sql.NullTime) error {
	g, ok := r.games[id]
	if !ok {
		return common.ErrNotFound
	}
	g.Status = status
	if startDate != nil {
		if startDate.Valid {
			t := startDate.Time
			g.StartDate = &t
		} else {
			g.StartDate = nil
		}
	}
	if endDate != nil {
		if endDate.Valid {
			t := endDate.Time
			g.EndDate = &t
		} else {
			g.EndDate = nil
		}
	}
	return nil
}

type fakeBaseRepo struct {
	bases []model.Base
}

func (r *fakeBaseRepo) Create(ctx context.Context, base *model.Base) error {
	r.bases = append(r.bases, *base)
	return nil
}

func (r *fakeBaseRepo) FindByID(ctx context.Context, id string) (*model.Base, error) {
	for _, b := range r.bases {
		if b.ID == id {
			cp := b
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeBaseRepo) ListByGameID(ctx context.Context, gameID string) ([]model.Base, error) {
	var out []model.Base
	for _, b := range r.bases {
		if b.GameID == gameID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBaseRepo) CountByGameID(ctx context.Context, gameID string) (int, error) {
	list, _ := r.ListByGameID(ctx, gameID)
	return len(list), nil
}

type fakeChallengeRepo struct {
	challenges []model.Challenge
}

func (r *fakeChallengeRepo) Create(ctx context.Context, c *model.Challenge) error {
	r.challenges = append(r.challenges, *c)
	return nil
}

func (r *fakeChallengeRepo) FindByID(ctx context.Context, id string) (*model.Challenge, error) {
	for _, c := range r.challenges {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeChallengeRepo) ListByGameID(ctx context.Context, gameID string) ([]model.Challenge, error) {
	var out []model.Challenge
	for _, c := range r.challenges {
		if c.GameID == gameID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeChallengeRepo) CountByGameID(ctx context.Context, gameID string) (int, error) {
	list, _ := r.ListByGameID(ctx, gameID)
	return len(list), nil
}

type fakeTeamRepo struct {
	teams   []model.Team
	players []model.Player
}

func (r *fakeTeamRepo) Create(ctx context.Context, team *model.Team) error {
	r.teams = append(r.teams, *team)
	return nil
}

func (r *fakeTeamRepo) FindByID(ctx context.Context, id string) (*model.Team, error) {
	for _, t := range r.teams {
		if t.ID == id {
			cp := t
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeTeamRepo) FindByJoinCode(ctx context.Context, joinCode string) (*model.Team, error) {
	for _, t := range r.teams {
		if t.JoinCode == joinCode {
			cp := t
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeTeamRepo) ListByGameID(ctx context.Context, gameID string) ([]model.Team, error) {
	var out []model.Team
	for _, t := range r.teams {
		if t.GameID == gameID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTeamRepo) CountByGameID(ctx context.Context, gameID string) (int, error) {
	list, _ := r.ListByGameID(ctx, gameID)
	return len(list), nil
}

func (r *fakeTeamRepo) CreatePlayer(ctx context.Context, player *model.Player) error {
	r.players = append(r.players, *player)
	return nil
}

func (r *fakeTeamRepo) FindPlayerByID(ctx context.Context, id string) (*model.Player, error) {
	for _, p := range r.players {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

type fakeAssignmentRepo struct {
	assignments []model.Assignment
}

func (r *fakeAssignmentRepo) CreateBatch(ctx context.Context, q database.Querier, batch []model.Assignment) error {
	for _, a := range batch {
		for _, existing := range r.assignments {
			if existing.GameID != a.GameID || existing.BaseID != a.BaseID {
				continue
			}
			sameScope := (existing.TeamID == nil && a.TeamID == nil) ||
				(existing.TeamID != nil && a.TeamID != nil && *existing.TeamID == *a.TeamID)
			if sameScope {
				return fmt.Errorf("assignment for base %s already exists: %w", a.BaseID, common.ErrConflict)
			}
		}
		r.assignments = append(r.assignments, a)
	}
	return nil
}

func (r *fakeAssignmentRepo) ListByGameID(ctx context.Context, gameID string) ([]model.Assignment, error) {
	var out []model.Assignment
	for _, a := range r.assignments {
		if a.GameID == gameID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAssignmentRepo) DeleteByGameID(ctx context.Context, q database.Querier, gameID string) error {
	kept := r.assignments[:0]
	for _, a := range r.assignments {
		if a.GameID != gameID {
			kept = append(kept, a)
		}
	}
	r.assignments = kept
	return nil
}

type fakeCheckInRepo struct {
	checkIns []model.CheckIn
}

func (r *fakeCheckInRepo) Create(ctx context.Context, q database.Querier, checkIn *model.CheckIn) error {
	for _, ci := range r.checkIns {
		if ci.TeamID == checkIn.TeamID && ci.BaseID == checkIn.BaseID {
			return fmt.Errorf("team already checked in at this base: %w", common.ErrConflict)
		}
	}
	r.checkIns = append(r.checkIns, *checkIn)
	return nil
}

func (r *fakeCheckInRepo) ListByGameAndTeam(ctx context.Context, gameID, teamID string) ([]model.CheckIn, error) {
	var out []model.CheckIn
	for _, ci := range r.checkIns {
		if ci.GameID == gameID && ci.TeamID == teamID {
			out = append(out, ci)
		}
	}
	return out, nil
}

func (r *fakeCheckInRepo) ListByGameID(ctx context.Context, gameID string) ([]model.CheckIn, error) {
	var out []model.CheckIn
	for _, ci := range r.checkIns {
		if ci.GameID == gameID {
			out = append(out, ci)
		}
	}
	return out, nil
}

func (r *fakeCheckInRepo) DeleteByGameID(ctx context.Context, q database.Querier, gameID string) error {
	kept := r.checkIns[:0]
	for _, ci := range r.checkIns {
		if ci.GameID != gameID {
			kept = append(kept, ci)
		}
	}
	r.checkIns = kept
	return nil
}

type fakeSubmissionRepo struct {
	submissions []model.Submission
}

func (r *fakeSubmissionRepo) Create(ctx context.Context, q database.Querier, sub *model.Submission) error {
	if sub.IdempotencyKey != nil {
		for _, s := range r.submissions {
			if s.IdempotencyKey != nil && *s.IdempotencyKey == *sub.IdempotencyKey {
				return repository.ErrDuplicateIdempotencyKey
			}
		}
	}
	r.submissions = append(r.submissions, *sub)
	return nil
}

func (r *fakeSubmissionRepo) FindByID(ctx context.Context, id string) (*model.Submission, error) {
	for _, s := range r.submissions {
		if s.ID == id {
			cp := s
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeSubmissionRepo) FindByIdempotencyKey(ctx context.Context, key string) (*model.Submission, error) {
	for _, s := range r.submissions {
		if s.IdempotencyKey != nil && *s.IdempotencyKey == key {
			cp := s
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeSubmissionRepo) ListByGameID(ctx context.Context, gameID string) ([]model.Submission, error) {
	var out []model.Submission
	for _, s := range r.submissions {
		if s.GameID == gameID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSubmissionRepo) ListByTeamID(ctx context.Context, teamID string) ([]model.Submission, error) {
	var out []model.Submission
	for _, s := range r.submissions {
		if s.TeamID == teamID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSubmissionRepo) UpdateReview(ctx context.Context, q database.Querier, id string, status model.SubmissionStatus, reviewedBy string, feedback *string) error {
	for i := range r.submissions {
		if r.submissions[i].ID == id {
			r.submissions[i].Status = status
			r.submissions[i].ReviewedBy = &reviewedBy
			r.submissions[i].Feedback = feedback
			return nil
		}
	}
	return common.ErrNotFound
}

func (r *fakeSubmissionRepo) CountByGameID(ctx context.Context, gameID string) (int, int, error) {
	total, pending := 0, 0
	for _, s := range r.submissions {
		if s.GameID != gameID {
			continue
		}
		total++
		if s.Status == model.SubmissionPending {
			pending++
		}
	}
	return total, pending, nil
}

func (r *fakeSubmissionRepo) DeleteByGameID(ctx context.Context, q database.Querier, gameID string) error {
	kept := r.submissions[:0]
	for _, s := range r.submissions {
		if s.GameID != gameID {
			kept = append(kept, s)
		}
	}
	r.submissions = kept
	return nil
}

type fakeActivityRepo struct {
	events []model.ActivityEvent
}

func (r *fakeActivityRepo) Create(ctx context.Context, q database.Querier, e *model.ActivityEvent) error {
	r.events = append(r.events, *e)
	return nil
}

func (r *fakeActivityRepo) ListByGameID(ctx context.Context, gameID string, limit int) ([]model.ActivityEvent, error) {
	var out []model.ActivityEvent
	for _, e := range r.events {
		if e.GameID == gameID {
			out = append(out, e)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeActivityRepo) DeleteByGameID(ctx context.Context, q database.Querier, gameID string) error {
	kept := r.events[:0]
	for _, e := range r.events {
		if e.GameID != gameID {
			kept = append(kept, e)
		}
	}
	r.events = kept
	return nil
}

type fakeNotificationRepo struct {
	notifications []model.Notification
}

func (r *fakeNotificationRepo) Create(ctx context.Context, q database.Querier, n *model.Notification) error {
	r.notifications = append(r.notifications, *n)
	return nil
}

func (r *fakeNotificationRepo) ListByGameID(ctx context.Context, gameID string) ([]model.Notification, error) {
	var out []model.Notification
	for _, n := range r.notifications {
		if n.GameID == gameID {
			out = append(out, n)
		}
	}
	return out, nil
}

type fakeLocationRepo struct {
	locations []model.TeamLocation
}

func (r *fakeLocationRepo) Upsert(ctx context.Context, q database.Querier, loc *model.TeamLocation) error {
	for i := range r.locations {
		if r.locations[i].GameID == loc.GameID && r.locations[i].TeamID == loc.TeamID {
			r.locations[i] = *loc
			return nil
		}
	}
	r.locations = append(r.locations, *loc)
	return nil
}

func (r *fakeLocationRepo) ListByGameID(ctx context.Context, gameID string) ([]model.TeamLocation, error) {
	var out []model.TeamLocation
	for _, l := range r.locations {
		if l.GameID == gameID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeLocationRepo) DeleteByGameID(ctx context.Context, q database.Querier, gameID string) error {
	kept := r.locations[:0]
	for _, l := range r.locations {
		if l.GameID != gameID {
			kept = append(kept, l)
		}
	}
	r.locations = kept
	return nil
}

// recordingSink collects every envelope a broadcaster delivers.
type recordingSink struct {
	mu        sync.Mutex
	envelopes []event.Envelope
}

func (s *recordingSink) Deliver(ctx context.Context, gameID string, payload []byte) error {
	var env event.Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return err
	}
	s.mu.Lock()
	s.envelopes = append(s.envelopes, env)
	s.mu.Unlock()
	return nil
}

func (s *recordingSink) byType(t event.Type) []event.Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []event.Envelope
	for _, env := range s.envelopes {
		if env.Type == t {
			out = append(out, env)
		}
	}
	return out
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
