package repository

import (
	"context"
	"database/sql"
	"fmt"

	"pointhunt/internal/common"
	"pointhunt/internal/domain/model"
	"pointhunt/internal/platform/database"
)

type CheckInRepository interface {
	Create(ctx context.Context, q database.Querier, checkIn *model.CheckIn) error
	ListByGameAndTeam(ctx context.Context, gameID, teamID string) ([]model.CheckIn, error)
	ListByGameID(ctx context.Context, gameID string) ([]model.CheckIn, error)
	DeleteByGameID(ctx context.Context, q database.Querier, gameID string) error
}

type pgCheckInRepository struct {
	db *sql.DB
}

func NewPgCheckInRepository(db *sql.DB) CheckInRepository {
	return &pgCheckInRepository{db: db}
}

func (r *pgCheckInRepository) Create(ctx context.Context, q database.Querier, checkIn *model.CheckIn) error {
	query := `INSERT INTO check_ins (id, game_id, team_id, base_id, player_id, checked_in_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := q.ExecContext(ctx, query,
		checkIn.ID, checkIn.GameID, checkIn.TeamID, checkIn.BaseID, checkIn.PlayerID, checkIn.CheckedInAt)
	if err != nil {
		if common.IsUniqueViolation(err, database.ConstraintCheckInTeamBase) {
			return fmt.Errorf("team already checked in at this base: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgCheckInRepository.Create: %w", err)
	}
	return nil
}

func (r *pgCheckInRepository) ListByGameAndTeam(ctx context.Context, gameID, teamID string) ([]model.CheckIn, error) {
	return r.list(ctx,
		`SELECT id, game_id, team_id, base_id, player_id, checked_in_at
		 FROM check_ins WHERE game_id = $1 AND team_id = $2`, gameID, teamID)
}

func (r *pgCheckInRepository) ListByGameID(ctx context.Context, gameID string) ([]model.CheckIn, error) {
	return r.list(ctx,
		`SELECT id, game_id, team_id, base_id, player_id, checked_in_at
		 FROM check_ins WHERE game_id = $1`, gameID)
}

func (r *pgCheckInRepository) list(ctx context.Context, query string, args ...any) ([]model.CheckIn, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgCheckInRepository.list: %w", err)
	}
	defer rows.Close()

	var checkIns []model.CheckIn
	for rows.Next() {
		var ci model.CheckIn
		if err := rows.Scan(&ci.ID, &ci.GameID, &ci.TeamID, &ci.BaseID, &ci.PlayerID, &ci.CheckedInAt); err != nil {
			return nil, fmt.Errorf("pgCheckInRepository.list: %w", err)
		}
		checkIns = append(checkIns, ci)
	}
	return checkIns, rows.Err()
}

func (r *pgCheckInRepository) DeleteByGameID(ctx context.Context, q database.Querier, gameID string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM check_ins WHERE game_id = $1`, gameID); err != nil {
		return fmt.Errorf("pgCheckInRepository.DeleteByGameID: %w", err)
	}
	return nil
}
