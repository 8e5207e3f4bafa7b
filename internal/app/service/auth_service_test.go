package service

import (
	"context"
	"errors"
	"testing"

	"pointhunt/internal/common"
	"pointhunt/internal/common/security"
	"pointhunt/internal/domain/model"
	"pointhunt/internal/platform/config"
)

func newAuthWorld(t *testing.T) (*AuthService, *fakeTeamRepo, *fakeGameRepo) {
	t.Helper()
	config.Load()
	security.InitJWT()

	users := &fakeUserRepo{users: map[string]*model.User{}}
	teams := &fakeTeamRepo{}
	games := newFakeGameRepo()
	return NewAuthService(users, teams, games), teams, games
}

type fakeUserRepo struct {
	users map[string]*model.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return common.ErrConflict
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func TestSignupThenLogin(t *testing.T) {
	svc, _, _ := newAuthWorld(t)
	ctx := context.Background()

	signup, err := svc.Signup(ctx, SignupRequest{Name: "Dana", Email: "Dana@Example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if signup.Token == "" {
		t.Errorf("signup should issue a token")
	}
	if signup.User.HashedPassword != "" {
		t.Errorf("hashed password leaked in response")
	}

	login, err := svc.Login(ctx, LoginRequest{Email: "dana@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.User.ID != signup.User.ID {
		t.Errorf("login resolved a different user")
	}

	if _, err := svc.Login(ctx, LoginRequest{Email: "dana@example.com", Password: "wrong"}); !errors.Is(err, common.ErrUnauthorized) {
		t.Errorf("wrong password should be unauthorized, got %v", err)
	}
}

func TestJoinTeamIssuesScopedToken(t *testing.T) {
	svc, teams, games := newAuthWorld(t)
	ctx := context.Background()

	games.Create(ctx, &model.Game{ID: "game", Status: model.GameStatusActive, CreatedByID: "op"})
	teams.Create(ctx, &model.Team{ID: "red", GameID: "game", Name: "Red", JoinCode: "red-ab12cd34"})

	resp, err := svc.JoinTeam(ctx, JoinTeamRequest{JoinCode: " RED-AB12CD34 ", PlayerName: "Sam"})
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if resp.Team.ID != "red" || resp.GameID != "game" {
		t.Errorf("wrong scope: %+v", resp)
	}
	if resp.Token == "" {
		t.Errorf("join should issue a player token")
	}
	if len(teams.players) != 1 || teams.players[0].Name != "Sam" {
		t.Errorf("player not created")
	}
}

func TestJoinTeamRejectedForFinishedGame(t *testing.T) {
	svc, teams, games := newAuthWorld(t)
	ctx := context.Background()

	games.Create(ctx, &model.Game{ID: "game", Status: model.GameStatusCompleted, CreatedByID: "op"})
	teams.Create(ctx, &model.Team{ID: "red", GameID: "game", JoinCode: "red-ab12cd34"})

	_, err := svc.JoinTeam(ctx, JoinTeamRequest{JoinCode: "red-ab12cd34", PlayerName: "Sam"})
	if !errors.Is(err, common.ErrInvalidState) {
		t.Errorf("joining a finished game should fail, got %v", err)
	}
}

func TestJoinTeamUnknownCode(t *testing.T) {
	svc, _, _ := newAuthWorld(t)
	_, err := svc.JoinTeam(context.Background(), JoinTeamRequest{JoinCode: "nope", PlayerName: "Sam"})
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
