package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"pointhunt/internal/common"
	"pointhunt/internal/domain/model"
	"pointhunt/internal/domain/repository"
	"pointhunt/internal/platform/database"

	"github.com/google/uuid"
)

type AssignmentService struct {
	runner         database.Runner
	gameRepo       repository.GameRepository
	baseRepo       repository.BaseRepository
	challengeRepo  repository.ChallengeRepository
	teamRepo       repository.TeamRepository
	assignmentRepo repository.AssignmentRepository
}

func NewAssignmentService(
	runner database.Runner,
	gameRepo repository.GameRepository,
	baseRepo repository.BaseRepository,
	challengeRepo repository.ChallengeRepository,
	teamRepo repository.TeamRepository,
	assignmentRepo repository.AssignmentRepository,
) *AssignmentService {
	return &AssignmentService{
		runner:         runner,
		gameRepo:       gameRepo,
		baseRepo:       baseRepo,
		challengeRepo:  challengeRepo,
		teamRepo:       teamRepo,
		assignmentRepo: assignmentRepo,
	}
}

type AssignItem struct {
	BaseID      string  `json:"base_id"`
	ChallengeID string  `json:"challenge_id"`
	TeamID      *string `json:"team_id,omitempty"`
}

type BulkAssignRequest struct {
	GameID string       `json:"game_id"`
	Items  []AssignItem `json:"items"`
}

// Assign creates one assignment. The scope uniqueness lives in storage, so a
// concurrent duplicate surfaces as a conflict no matter how the race falls.
func (s *AssignmentService) Assign(ctx context.Context, operatorID, gameID string, item AssignItem) (*model.Assignment, error) {
	game, err := ownedGame(ctx, s.gameRepo, gameID, operatorID)
	if err != nil {
		return nil, err
	}
	if game.Status == model.GameStatusCompleted {
		return nil, fmt.Errorf("game already finished: %w", common.ErrInvalidState)
	}

	assignment, err := s.buildAssignment(ctx, gameID, item)
	if err != nil {
		return nil, err
	}

	err = s.runner.InTx(ctx, func(tx database.Tx) error {
		return s.assignmentRepo.CreateBatch(ctx, tx, []model.Assignment{*assignment})
	})
	if err != nil {
		return nil, err
	}
	return assignment, nil
}

// BulkAssign creates all items or none. Any validation failure or scope
// conflict rolls the whole batch back.
func (s *AssignmentService) BulkAssign(ctx context.Context, operatorID string, req BulkAssignRequest) ([]model.Assignment, error) {
	game, err := ownedGame(ctx, s.gameRepo, req.GameID, operatorID)
	if err != nil {
		return nil, err
	}
	if game.Status == model.GameStatusCompleted {
		return nil, fmt.Errorf("game already finished: %w", common.ErrInvalidState)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("empty assignment batch: %w", common.ErrBadRequest)
	}

	assignments := make([]model.Assignment, 0, len(req.Items))
	for _, item := range req.Items {
		a, err := s.buildAssignment(ctx, req.GameID, item)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, *a)
	}

	err = s.runner.InTx(ctx, func(tx database.Tx) error {
		return s.assignmentRepo.CreateBatch(ctx, tx, assignments)
	})
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (s *AssignmentService) List(ctx context.Context, operatorID, gameID string) ([]model.Assignment, error) {
	if _, err := ownedGame(ctx, s.gameRepo, gameID, operatorID); err != nil {
		return nil, err
	}
	return s.assignmentRepo.ListByGameID(ctx, gameID)
}

func (s *AssignmentService) buildAssignment(ctx context.Context, gameID string, item AssignItem) (*model.Assignment, error) {
	base, err := s.baseRepo.FindByID(ctx, item.BaseID)
	if err != nil {
		return nil, fmt.Errorf("base %s: %w", item.BaseID, err)
	}
	if base.GameID != gameID {
		return nil, fmt.Errorf("base %s belongs to another game: %w", item.BaseID, common.ErrBadRequest)
	}
	if base.FixedChallengeID != nil {
		return nil, fmt.Errorf("base %s has a fixed challenge: %w", item.BaseID, common.ErrConflict)
	}

	challenge, err := s.challengeRepo.FindByID(ctx, item.ChallengeID)
	if err != nil {
		return nil, fmt.Errorf("challenge %s: %w", item.ChallengeID, err)
	}
	if challenge.GameID != gameID {
		return nil, fmt.Errorf("challenge %s belongs to another game: %w", item.ChallengeID, common.ErrBadRequest)
	}

	if item.TeamID != nil {
		team, err := s.teamRepo.FindByID(ctx, *item.TeamID)
		if err != nil {
			return nil, fmt.Errorf("team %s: %w", *item.TeamID, err)
		}
		if team.GameID != gameID {
			return nil, fmt.Errorf("team %s belongs to another game: %w", *item.TeamID, common.ErrBadRequest)
		}
	}

	return &model.Assignment{
		ID:          uuid.NewString(),
		GameID:      gameID,
		BaseID:      item.BaseID,
		ChallengeID: item.ChallengeID,
		TeamID:      item.TeamID,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// AutoAssign fills every base that has neither a fixed challenge nor an
// existing assignment, drawing randomly from the game's assignable pool.
// Location-bound challenges never enter the pool. Uniform mode writes one
// all-teams assignment per base; otherwise each team draws its own.
// Runs inside the activation transaction.
func (s *AssignmentService) AutoAssign(ctx context.Context, tx database.Tx, game *model.Game, bases []model.Base, teams []model.Team, challenges []model.Challenge, existing []model.Assignment) error {
	pool := make([]model.Challenge, 0, len(challenges))
	for _, c := range challenges {
		if !c.LocationBound {
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 {
		return nil
	}

	assignedBases := make(map[string]bool, len(existing))
	for _, a := range existing {
		assignedBases[a.BaseID] = true
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now().UTC()
	var batch []model.Assignment
	for _, base := range bases {
		if base.FixedChallengeID != nil || assignedBases[base.ID] {
			continue
		}
		if game.UniformAssignment {
			batch = append(batch, model.Assignment{
				ID:          uuid.NewString(),
				GameID:      game.ID,
				BaseID:      base.ID,
				ChallengeID: pool[rng.Intn(len(pool))].ID,
				CreatedAt:   now,
			})
			continue
		}
		for _, team := range teams {
			teamID := team.ID
			batch = append(batch, model.Assignment{
				ID:          uuid.NewString(),
				GameID:      game.ID,
				BaseID:      base.ID,
				ChallengeID: pool[rng.Intn(len(pool))].ID,
				TeamID:      &teamID,
				CreatedAt:   now,
			})
		}
	}
	if len(batch) == 0 {
		return nil
	}
	return s.assignmentRepo.CreateBatch(ctx, tx, batch)
}
