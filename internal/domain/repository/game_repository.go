package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pointhunt/internal/common"
	"pointhunt/internal/domain/model"
	"pointhunt/internal/platform/database"
)

type GameRepository interface {
	Create(ctx context.Context, game *model.Game) error
	FindByID(ctx context.Context, id string) (*model.Game, error)
	ListByCreator(ctx context.Context, userID string) ([]model.Game, error)
	UpdateStatus(ctx context.Context, q database.Querier, id string, status model.GameStatus, startDate, endDate *sql.NullTime) error
}

type pgGameRepository struct {
	db *sql.DB
}

func NewPgGameRepository(db *sql.DB) GameRepository {
	return &pgGameRepository{db: db}
}

const gameColumns = `id, name, description, join_code, status, uniform_assignment, start_date, end_date, created_by_id, created_at, updated_at`

func (r *pgGameRepository) Create(ctx context.Context, game *model.Game) error {
	query := `INSERT INTO games (id, name, description, join_code, status, uniform_assignment, start_date, end_date, created_by_id)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query,
		game.ID, game.Name, game.Description, game.JoinCode, game.Status,
		game.UniformAssignment, game.StartDate, game.EndDate, game.CreatedByID)
	if err != nil {
		if common.IsUniqueViolation(err, "") {
			return fmt.Errorf("game join code already in use: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgGameRepository.Create: %w", err)
	}
	return nil
}

func (r *pgGameRepository) FindByID(ctx context.Context, id string) (*model.Game, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id)
	return scanGame(row)
}

func (r *pgGameRepository) ListByCreator(ctx context.Context, userID string) ([]model.Game, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE created_by_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("pgGameRepository.ListByCreator: %w", err)
	}
	defer rows.Close()

	var games []model.Game
	for rows.Next() {
		g, err := scanGameRows(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, *g)
	}
	return games, rows.Err()
}

// UpdateStatus writes the new lifecycle status. A nil date pointer leaves
// that column untouched.
func (r *pgGameRepository) UpdateStatus(ctx context.Context, q database.Querier, id string, status model.GameStatus, startDate, endDate *sql.NullTime) error {
	query := `UPDATE games SET status = $1, updated_at = now()`
	args := []any{status}
	if startDate != nil {
		args = append(args, *startDate)
		query += fmt.Sprintf(", start_date = $%d", len(args))
	}
	if endDate != nil {
		args = append(args, *endDate)
		query += fmt.Sprintf(", end_date = $%d", len(args))
	}
	args = append(args, id)
	query += fmt.Sprintf(" WHERE id = $%d", len(args))

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("pgGameRepository.UpdateStatus: %w", err)
	}
	return nil
}

func scanGame(row *sql.Row) (*model.Game, error) {
	g := &model.Game{}
	err := row.Scan(&g.ID, &g.Name, &g.Description, &g.JoinCode, &g.Status, &g.UniformAssignment,
		&g.StartDate, &g.EndDate, &g.CreatedByID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("scanGame: %w", err)
	}
	return g, nil
}

func scanGameRows(rows *sql.Rows) (*model.Game, error) {
	g := &model.Game{}
	err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.JoinCode, &g.Status, &g.UniformAssignment,
		&g.StartDate, &g.EndDate, &g.CreatedByID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scanGameRows: %w", err)
	}
	return g, nil
}
