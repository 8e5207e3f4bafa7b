package service

import (
	"context"
	"fmt"
	"time"

	"pointhunt/internal/app/event"
	"pointhunt/internal/app/progress"
	"pointhunt/internal/common"
	"pointhunt/internal/domain/model"
	"pointhunt/internal/domain/repository"
	"pointhunt/internal/platform/database"

	"github.com/google/uuid"
)

// ProgressService handles check-ins and serves the derived per-base view.
type ProgressService struct {
	runner         database.Runner
	gameRepo       repository.GameRepository
	baseRepo       repository.BaseRepository
	teamRepo       repository.TeamRepository
	assignmentRepo repository.AssignmentRepository
	checkInRepo    repository.CheckInRepository
	submissionRepo repository.SubmissionRepository
	activityRepo   repository.ActivityEventRepository
	events         *event.Broadcaster
}

func NewProgressService(
	runner database.Runner,
	gameRepo repository.GameRepository,
	baseRepo repository.BaseRepository,
	teamRepo repository.TeamRepository,
	assignmentRepo repository.AssignmentRepository,
	checkInRepo repository.CheckInRepository,
	submissionRepo repository.SubmissionRepository,
	activityRepo repository.ActivityEventRepository,
	events *event.Broadcaster,
) *ProgressService {
	return &ProgressService{
		runner:         runner,
		gameRepo:       gameRepo,
		baseRepo:       baseRepo,
		teamRepo:       teamRepo,
		assignmentRepo: assignmentRepo,
		checkInRepo:    checkInRepo,
		submissionRepo: submissionRepo,
		activityRepo:   activityRepo,
		events:         events,
	}
}

// CheckIn records a team's arrival at a base. The second check-in by the
// same team at the same base is a conflict regardless of which player sent
// it; the uniqueness lives in storage so a concurrent duplicate cannot slip
// through. The activity record and its broadcast ride the same transaction.
func (s *ProgressService) CheckIn(ctx context.Context, gameID, teamID, playerID, baseID string) (*model.CheckIn, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.Status != model.GameStatusActive {
		return nil, fmt.Errorf("game is not active: %w", common.ErrInvalidState)
	}
	base, err := s.baseRepo.FindByID(ctx, baseID)
	if err != nil {
		return nil, err
	}
	if base.GameID != gameID {
		return nil, common.ErrNotFound
	}
	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	checkIn := &model.CheckIn{
		ID:          uuid.NewString(),
		GameID:      gameID,
		TeamID:      teamID,
		BaseID:      baseID,
		PlayerID:    playerID,
		CheckedInAt: time.Now().UTC(),
	}
	err = s.runner.InTx(ctx, func(tx database.Tx) error {
		if err := s.checkInRepo.Create(ctx, tx, checkIn); err != nil {
			return err
		}
		activity := model.ActivityEvent{
			ID:        uuid.NewString(),
			GameID:    gameID,
			Type:      model.ActivityCheckIn,
			TeamID:    teamID,
			BaseID:    &baseID,
			Message:   fmt.Sprintf("%s checked in at %s", team.Name, base.Name),
			Timestamp: checkIn.CheckedInAt,
		}
		if err := s.activityRepo.Create(ctx, tx, &activity); err != nil {
			return err
		}
		s.events.Activity(tx, activity)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return checkIn, nil
}

// TeamProgress recomputes the per-base view for one team. Nothing here is
// cached or stored; the answer always reflects the current check-ins,
// assignments and review decisions.
func (s *ProgressService) TeamProgress(ctx context.Context, gameID, teamID string) ([]model.BaseProgress, error) {
	if _, err := s.teamRepo.FindByID(ctx, teamID); err != nil {
		return nil, err
	}
	bases, err := s.baseRepo.ListByGameID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	checkIns, err := s.checkInRepo.ListByGameAndTeam(ctx, gameID, teamID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignmentRepo.ListByGameID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	submissions, err := s.submissionRepo.ListByTeamID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	return progress.Derive(bases, checkIns, assignments, submissions, teamID), nil
}
