package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pointhunt/internal/app/event"
	"pointhunt/internal/common"
	"pointhunt/internal/domain/model"
	"pointhunt/internal/domain/repository"
	"pointhunt/internal/platform/database"

	"github.com/google/uuid"
)

// GameService owns the game lifecycle: setup -> active -> completed, with a
// reset path back to setup that erases all progress.
type GameService struct {
	runner         database.Runner
	gameRepo       repository.GameRepository
	baseRepo       repository.BaseRepository
	teamRepo       repository.TeamRepository
	challengeRepo  repository.ChallengeRepository
	assignmentRepo repository.AssignmentRepository
	checkInRepo    repository.CheckInRepository
	submissionRepo repository.SubmissionRepository
	activityRepo   repository.ActivityEventRepository
	locationRepo   repository.TeamLocationRepository
	assignments    *AssignmentService
	events         *event.Broadcaster
}

func NewGameService(
	runner database.Runner,
	gameRepo repository.GameRepository,
	baseRepo repository.BaseRepository,
	teamRepo repository.TeamRepository,
	challengeRepo repository.ChallengeRepository,
	assignmentRepo repository.AssignmentRepository,
	checkInRepo repository.CheckInRepository,
	submissionRepo repository.SubmissionRepository,
	activityRepo repository.ActivityEventRepository,
	locationRepo repository.TeamLocationRepository,
	assignments *AssignmentService,
	events *event.Broadcaster,
) *GameService {
	return &GameService{
		runner:         runner,
		gameRepo:       gameRepo,
		baseRepo:       baseRepo,
		teamRepo:       teamRepo,
		challengeRepo:  challengeRepo,
		assignmentRepo: assignmentRepo,
		checkInRepo:    checkInRepo,
		submissionRepo: submissionRepo,
		activityRepo:   activityRepo,
		locationRepo:   locationRepo,
		assignments:    assignments,
		events:         events,
	}
}

type CreateGameRequest struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	UniformAssignment bool   `json:"uniform_assignment"`
}

func (s *GameService) Create(ctx context.Context, operatorID string, req CreateGameRequest) (*model.Game, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("game name is required: %w", common.ErrValidation)
	}
	game := &model.Game{
		ID:                uuid.NewString(),
		Name:              req.Name,
		Description:       req.Description,
		JoinCode:          newJoinCode(req.Name),
		Status:            model.GameStatusSetup,
		UniformAssignment: req.UniformAssignment,
		CreatedByID:       operatorID,
	}
	if err := s.gameRepo.Create(ctx, game); err != nil {
		return nil, err
	}
	return s.gameRepo.FindByID(ctx, game.ID)
}

func (s *GameService) Get(ctx context.Context, operatorID, gameID string) (*model.Game, error) {
	return ownedGame(ctx, s.gameRepo, gameID, operatorID)
}

func (s *GameService) List(ctx context.Context, operatorID string) ([]model.Game, error) {
	return s.gameRepo.ListByCreator(ctx, operatorID)
}

// GetForPlayer returns the game a player token is scoped to, without the
// ownership check operators go through.
func (s *GameService) GetForPlayer(ctx context.Context, gameID string) (*model.Game, error) {
	return s.gameRepo.FindByID(ctx, gameID)
}

// Activate moves a game from setup to active. The game needs at least one
// base, one team and one challenge; activation then fills the assignment
// gaps via auto-assignment and stamps the start date. The status event rides
// the same transaction, so subscribers only hear about games that really
// went live.
func (s *GameService) Activate(ctx context.Context, operatorID, gameID string) (*model.Game, error) {
	game, err := ownedGame(ctx, s.gameRepo, gameID, operatorID)
	if err != nil {
		return nil, err
	}
	if game.Status != model.GameStatusSetup {
		return nil, fmt.Errorf("only a game in setup can be activated: %w", common.ErrInvalidState)
	}

	baseCount, err := s.baseRepo.CountByGameID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	teamCount, err := s.teamRepo.CountByGameID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	challengeCount, err := s.challengeRepo.CountByGameID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if baseCount == 0 || teamCount == 0 || challengeCount == 0 {
		return nil, fmt.Errorf("game needs at least one base, team and challenge: %w", common.ErrInvalidState)
	}

	bases, err := s.baseRepo.ListByGameID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	teams, err := s.teamRepo.ListByGameID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	challenges, err := s.challengeRepo.ListByGameID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	existing, err := s.assignmentRepo.ListByGameID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = s.runner.InTx(ctx, func(tx database.Tx) error {
		if err := s.assignments.AutoAssign(ctx, tx, game, bases, teams, challenges, existing); err != nil {
			return err
		}
		start := &sql.NullTime{Time: now, Valid: true}
		if err := s.gameRepo.UpdateStatus(ctx, tx, gameID, model.GameStatusActive, start, nil); err != nil {
			return err
		}
		s.events.GameStatus(tx, gameID, event.GameStatusData{Status: model.GameStatusActive, StartDate: &now})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.gameRepo.FindByID(ctx, gameID)
}

// Complete ends an active game and stamps the end date.
func (s *GameService) Complete(ctx context.Context, operatorID, gameID string) (*model.Game, error) {
	game, err := ownedGame(ctx, s.gameRepo, gameID, operatorID)
	if err != nil {
		return nil, err
	}
	if game.Status != model.GameStatusActive {
		return nil, fmt.Errorf("only an active game can be completed: %w", common.ErrInvalidState)
	}

	now := time.Now().UTC()
	err = s.runner.InTx(ctx, func(tx database.Tx) error {
		end := &sql.NullTime{Time: now, Valid: true}
		if err := s.gameRepo.UpdateStatus(ctx, tx, gameID, model.GameStatusCompleted, nil, end); err != nil {
			return err
		}
		s.events.GameStatus(tx, gameID, event.GameStatusData{Status: model.GameStatusCompleted, StartDate: game.StartDate, EndDate: &now})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.gameRepo.FindByID(ctx, gameID)
}

// Reset returns a game to setup and erases everything the teams did:
// check-ins, submissions, assignments, the activity feed and cached
// locations. Bases, challenges and teams survive. One transaction, so a
// failed reset leaves the game untouched.
func (s *GameService) Reset(ctx context.Context, operatorID, gameID string) (*model.Game, error) {
	game, err := ownedGame(ctx, s.gameRepo, gameID, operatorID)
	if err != nil {
		return nil, err
	}
	if game.Status == model.GameStatusSetup {
		return nil, fmt.Errorf("game is already in setup: %w", common.ErrInvalidState)
	}

	err = s.runner.InTx(ctx, func(tx database.Tx) error {
		if err := s.submissionRepo.DeleteByGameID(ctx, tx, gameID); err != nil {
			return err
		}
		if err := s.checkInRepo.DeleteByGameID(ctx, tx, gameID); err != nil {
			return err
		}
		if err := s.assignmentRepo.DeleteByGameID(ctx, tx, gameID); err != nil {
			return err
		}
		if err := s.activityRepo.DeleteByGameID(ctx, tx, gameID); err != nil {
			return err
		}
		if err := s.locationRepo.DeleteByGameID(ctx, tx, gameID); err != nil {
			return err
		}
		null := &sql.NullTime{}
		if err := s.gameRepo.UpdateStatus(ctx, tx, gameID, model.GameStatusSetup, null, null); err != nil {
			return err
		}
		s.events.GameStatus(tx, gameID, event.GameStatusData{Status: model.GameStatusSetup})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.gameRepo.FindByID(ctx, gameID)
}
