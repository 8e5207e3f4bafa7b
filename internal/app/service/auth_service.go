package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pointhunt/internal/common"
	"pointhunt/internal/common/security"
	"pointhunt/internal/domain/model"
	"pointhunt/internal/domain/repository"

	"github.com/google/uuid"
)

type AuthService struct {
	userRepo repository.UserRepository
	teamRepo repository.TeamRepository
	gameRepo repository.GameRepository
}

func NewAuthService(userRepo repository.UserRepository, teamRepo repository.TeamRepository, gameRepo repository.GameRepository) *AuthService {
	return &AuthService{userRepo: userRepo, teamRepo: teamRepo, gameRepo: gameRepo}
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

type JoinTeamRequest struct {
	JoinCode   string `json:"join_code"`
	PlayerName string `json:"player_name"`
}

type JoinTeamResponse struct {
	Player *model.Player `json:"player"`
	Team   *model.Team   `json:"team"`
	GameID string        `json:"game_id"`
	Token  string        `json:"token"`
}

func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, common.ErrBadRequest
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		HashedPassword: hashedPassword,
		Role:           model.RoleOperator,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := security.GenerateOperatorToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = ""
	return &AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, common.ErrBadRequest
	}

	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized // Generic message for security
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, common.ErrUnauthorized
	}

	token, err := security.GenerateOperatorToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = ""
	return &AuthResponse{User: user, Token: token}, nil
}

// JoinTeam exchanges a team join code for a player identity and a token
// scoped to that team and its game. Joining a completed game is rejected.
func (s *AuthService) JoinTeam(ctx context.Context, req JoinTeamRequest) (*JoinTeamResponse, error) {
	if req.JoinCode == "" || req.PlayerName == "" {
		return nil, common.ErrBadRequest
	}

	team, err := s.teamRepo.FindByJoinCode(ctx, strings.ToLower(strings.TrimSpace(req.JoinCode)))
	if err != nil {
		return nil, err
	}
	game, err := s.gameRepo.FindByID(ctx, team.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load game for team: %w", err)
	}
	if game.Status == model.GameStatusCompleted {
		return nil, fmt.Errorf("game already finished: %w", common.ErrInvalidState)
	}

	player := &model.Player{
		ID:     uuid.NewString(),
		TeamID: team.ID,
		Name:   req.PlayerName,
	}
	if err := s.teamRepo.CreatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	token, err := security.GeneratePlayerToken(player.ID, team.ID, game.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &JoinTeamResponse{Player: player, Team: team, GameID: game.ID, Token: token}, nil
}
