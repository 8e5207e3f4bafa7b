package service

import (
	"context"
	"fmt"

	"pointhunt/internal/app/progress"
	"pointhunt/internal/common"
	"pointhunt/internal/domain/model"
	"pointhunt/internal/domain/repository"

	"github.com/google/uuid"
)

// ContentService manages a game's static material: bases, challenges and
// teams. Structural changes only happen while the game is in setup.
type ContentService struct {
	gameRepo       repository.GameRepository
	baseRepo       repository.BaseRepository
	challengeRepo  repository.ChallengeRepository
	teamRepo       repository.TeamRepository
	assignmentRepo repository.AssignmentRepository
}

func NewContentService(
	gameRepo repository.GameRepository,
	baseRepo repository.BaseRepository,
	challengeRepo repository.ChallengeRepository,
	teamRepo repository.TeamRepository,
	assignmentRepo repository.AssignmentRepository,
) *ContentService {
	return &ContentService{
		gameRepo:       gameRepo,
		baseRepo:       baseRepo,
		challengeRepo:  challengeRepo,
		teamRepo:       teamRepo,
		assignmentRepo: assignmentRepo,
	}
}

func (s *ContentService) gameInSetup(ctx context.Context, operatorID, gameID string) (*model.Game, error) {
	game, err := ownedGame(ctx, s.gameRepo, gameID, operatorID)
	if err != nil {
		return nil, err
	}
	if game.Status != model.GameStatusSetup {
		return nil, fmt.Errorf("game content is frozen once the game leaves setup: %w", common.ErrInvalidState)
	}
	return game, nil
}

type CreateBaseRequest struct {
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	FixedChallengeID *string `json:"fixed_challenge_id,omitempty"`
}

func (s *ContentService) CreateBase(ctx context.Context, operatorID, gameID string, req CreateBaseRequest) (*model.Base, error) {
	if _, err := s.gameInSetup(ctx, operatorID, gameID); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, fmt.Errorf("base name is required: %w", common.ErrValidation)
	}
	if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
		return nil, fmt.Errorf("coordinates out of range: %w", common.ErrValidation)
	}
	if req.FixedChallengeID != nil {
		challenge, err := s.challengeRepo.FindByID(ctx, *req.FixedChallengeID)
		if err != nil {
			return nil, fmt.Errorf("fixed challenge: %w", err)
		}
		if challenge.GameID != gameID {
			return nil, fmt.Errorf("fixed challenge belongs to another game: %w", common.ErrBadRequest)
		}
	}

	base := &model.Base{
		ID:               uuid.NewString(),
		GameID:           gameID,
		Name:             req.Name,
		Description:      req.Description,
		Lat:              req.Lat,
		Lng:              req.Lng,
		FixedChallengeID: req.FixedChallengeID,
	}
	if err := s.baseRepo.Create(ctx, base); err != nil {
		return nil, err
	}
	return s.baseRepo.FindByID(ctx, base.ID)
}

func (s *ContentService) ListBases(ctx context.Context, gameID string) ([]model.Base, error) {
	return s.baseRepo.ListByGameID(ctx, gameID)
}

type CreateChallengeRequest struct {
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	AnswerType     model.AnswerType `json:"answer_type"`
	AutoValidate   bool             `json:"auto_validate"`
	CorrectAnswers []string         `json:"correct_answers,omitempty"`
	Points         int              `json:"points"`
	LocationBound  bool             `json:"location_bound"`
	UnlocksBaseID  *string          `json:"unlocks_base_id,omitempty"`
}

func (s *ContentService) CreateChallenge(ctx context.Context, operatorID, gameID string, req CreateChallengeRequest) (*model.Challenge, error) {
	if _, err := s.gameInSetup(ctx, operatorID, gameID); err != nil {
		return nil, err
	}
	if req.Title == "" {
		return nil, fmt.Errorf("challenge title is required: %w", common.ErrValidation)
	}
	if req.Points < 0 {
		return nil, fmt.Errorf("points must not be negative: %w", common.ErrValidation)
	}
	if req.AnswerType != model.AnswerTypeText && req.AnswerType != model.AnswerTypePhoto {
		return nil, fmt.Errorf("unknown answer type %q: %w", req.AnswerType, common.ErrValidation)
	}
	// Photo answers always need a human; auto-validation only works on text
	// with a non-empty answer list.
	if req.AutoValidate && (req.AnswerType != model.AnswerTypeText || len(req.CorrectAnswers) == 0) {
		return nil, fmt.Errorf("auto-validation requires text answers and at least one accepted answer: %w", common.ErrValidation)
	}
	if req.UnlocksBaseID != nil {
		base, err := s.baseRepo.FindByID(ctx, *req.UnlocksBaseID)
		if err != nil {
			return nil, fmt.Errorf("unlock target: %w", err)
		}
		if base.GameID != gameID {
			return nil, fmt.Errorf("unlock target belongs to another game: %w", common.ErrBadRequest)
		}
	}

	challenge := &model.Challenge{
		ID:             uuid.NewString(),
		GameID:         gameID,
		Title:          req.Title,
		Description:    req.Description,
		AnswerType:     req.AnswerType,
		AutoValidate:   req.AutoValidate,
		CorrectAnswers: req.CorrectAnswers,
		Points:         req.Points,
		LocationBound:  req.LocationBound,
		UnlocksBaseID:  req.UnlocksBaseID,
	}
	if err := s.challengeRepo.Create(ctx, challenge); err != nil {
		return nil, err
	}
	return s.challengeRepo.FindByID(ctx, challenge.ID)
}

func (s *ContentService) ListChallenges(ctx context.Context, operatorID, gameID string) ([]model.Challenge, error) {
	if _, err := ownedGame(ctx, s.gameRepo, gameID, operatorID); err != nil {
		return nil, err
	}
	return s.challengeRepo.ListByGameID(ctx, gameID)
}

type CreateTeamRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (s *ContentService) CreateTeam(ctx context.Context, operatorID, gameID string, req CreateTeamRequest) (*model.Team, error) {
	if _, err := s.gameInSetup(ctx, operatorID, gameID); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, fmt.Errorf("team name is required: %w", common.ErrValidation)
	}

	team := &model.Team{
		ID:       uuid.NewString(),
		GameID:   gameID,
		Name:     req.Name,
		Color:    req.Color,
		JoinCode: newJoinCode(req.Name),
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, err
	}
	return s.teamRepo.FindByID(ctx, team.ID)
}

func (s *ContentService) ListTeams(ctx context.Context, gameID string) ([]model.Team, error) {
	return s.teamRepo.ListByGameID(ctx, gameID)
}

// ChallengeForTeam resolves and returns the challenge a team faces at a
// base, stripped of the accepted answers so a player client never sees them.
func (s *ContentService) ChallengeForTeam(ctx context.Context, gameID, teamID, baseID string) (*model.Challenge, error) {
	base, err := s.baseRepo.FindByID(ctx, baseID)
	if err != nil {
		return nil, err
	}
	if base.GameID != gameID {
		return nil, common.ErrNotFound
	}
	assignments, err := s.assignmentRepo.ListByGameID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	challengeID := progress.ResolveChallenge(*base, assignments, teamID)
	if challengeID == nil {
		return nil, fmt.Errorf("no challenge assigned at this base: %w", common.ErrNotFound)
	}
	challenge, err := s.challengeRepo.FindByID(ctx, *challengeID)
	if err != nil {
		return nil, err
	}
	challenge.CorrectAnswers = nil
	return challenge, nil
}
