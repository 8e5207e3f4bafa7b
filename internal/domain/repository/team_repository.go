package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pointhunt/internal/common"
	"pointhunt/internal/domain/model"
)

type TeamRepository interface {
	Create(ctx context.Context, team *model.Team) error
	FindByID(ctx context.Context, id string) (*model.Team, error)
	FindByJoinCode(ctx context.Context, joinCode string) (*model.Team, error)
	ListByGameID(ctx context.Context, gameID string) ([]model.Team, error)
	CountByGameID(ctx context.Context, gameID string) (int, error)

	CreatePlayer(ctx context.Context, player *model.Player) error
	FindPlayerByID(ctx context.Context, id string) (*model.Player, error)
}

type pgTeamRepository struct {
	db *sql.DB
}

func NewPgTeamRepository(db *sql.DB) TeamRepository {
	return &pgTeamRepository{db: db}
}

const teamColumns = `id, game_id, name, color, join_code, created_at`

func (r *pgTeamRepository) Create(ctx context.Context, team *model.Team) error {
	query := `INSERT INTO teams (id, game_id, name, color, join_code)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, team.ID, team.GameID, team.Name, team.Color, team.JoinCode)
	if err != nil {
		if common.IsUniqueViolation(err, "") {
			return fmt.Errorf("team join code already in use: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgTeamRepository.Create: %w", err)
	}
	return nil
}

func (r *pgTeamRepository) FindByID(ctx context.Context, id string) (*model.Team, error) {
	return r.findOne(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id)
}

func (r *pgTeamRepository) FindByJoinCode(ctx context.Context, joinCode string) (*model.Team, error) {
	return r.findOne(ctx, `SELECT `+teamColumns+` FROM teams WHERE join_code = $1`, joinCode)
}

func (r *pgTeamRepository) findOne(ctx context.Context, query string, arg any) (*model.Team, error) {
	t := &model.Team{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&t.ID, &t.GameID, &t.Name, &t.Color, &t.JoinCode, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgTeamRepository.findOne: %w", err)
	}
	return t, nil
}

func (r *pgTeamRepository) ListByGameID(ctx context.Context, gameID string) ([]model.Team, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE game_id = $1 ORDER BY name`, gameID)
	if err != nil {
		return nil, fmt.Errorf("pgTeamRepository.ListByGameID: %w", err)
	}
	defer rows.Close()

	var teams []model.Team
	for rows.Next() {
		var t model.Team
		if err := rows.Scan(&t.ID, &t.GameID, &t.Name, &t.Color, &t.JoinCode, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgTeamRepository.ListByGameID: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *pgTeamRepository) CountByGameID(ctx context.Context, gameID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM teams WHERE game_id = $1`, gameID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("pgTeamRepository.CountByGameID: %w", err)
	}
	return n, nil
}

func (r *pgTeamRepository) CreatePlayer(ctx context.Context, player *model.Player) error {
	query := `INSERT INTO players (id, team_id, name) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, player.ID, player.TeamID, player.Name)
	if err != nil {
		return fmt.Errorf("pgTeamRepository.CreatePlayer: %w", err)
	}
	return nil
}

func (r *pgTeamRepository) FindPlayerByID(ctx context.Context, id string) (*model.Player, error) {
	p := &model.Player{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, team_id, name, created_at FROM players WHERE id = $1`, id).Scan(
		&p.ID, &p.TeamID, &p.Name, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgTeamRepository.FindPlayerByID: %w", err)
	}
	return p, nil
}
