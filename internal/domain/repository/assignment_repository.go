package repository

import (
	"context"
	"database/sql"
	"fmt"

	"pointhunt/internal/common"
	"pointhunt/internal/domain/model"
	"pointhunt/internal/platform/database"
)

type AssignmentRepository interface {
	// CreateBatch inserts every assignment inside the caller's transaction.
	// A unique-index rejection on any row aborts the whole batch.
	CreateBatch(ctx context.Context, q database.Querier, assignments []model.Assignment) error
	ListByGameID(ctx context.Context, gameID string) ([]model.Assignment, error)
	DeleteByGameID(ctx context.Context, q database.Querier, gameID string) error
}

type pgAssignmentRepository struct {
	db *sql.DB
}

func NewPgAssignmentRepository(db *sql.DB) AssignmentRepository {
	return &pgAssignmentRepository{db: db}
}

func (r *pgAssignmentRepository) CreateBatch(ctx context.Context, q database.Querier, assignments []model.Assignment) error {
	query := `INSERT INTO assignments (id, game_id, base_id, challenge_id, team_id)
	          VALUES ($1, $2, $3, $4, $5)`
	for _, a := range assignments {
		if _, err := q.ExecContext(ctx, query, a.ID, a.GameID, a.BaseID, a.ChallengeID, a.TeamID); err != nil {
			if common.IsUniqueViolation(err, "") {
				scope := "all teams"
				if a.TeamID != nil {
					scope = "team " + *a.TeamID
				}
				return fmt.Errorf("assignment for base %s (%s) already exists: %w", a.BaseID, scope, common.ErrConflict)
			}
			return fmt.Errorf("pgAssignmentRepository.CreateBatch: %w", err)
		}
	}
	return nil
}

func (r *pgAssignmentRepository) ListByGameID(ctx context.Context, gameID string) ([]model.Assignment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, base_id, challenge_id, team_id, created_at
		 FROM assignments WHERE game_id = $1`, gameID)
	if err != nil {
		return nil, fmt.Errorf("pgAssignmentRepository.ListByGameID: %w", err)
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		var a model.Assignment
		if err := rows.Scan(&a.ID, &a.GameID, &a.BaseID, &a.ChallengeID, &a.TeamID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgAssignmentRepository.ListByGameID: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (r *pgAssignmentRepository) DeleteByGameID(ctx context.Context, q database.Querier, gameID string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM assignments WHERE game_id = $1`, gameID); err != nil {
		return fmt.Errorf("pgAssignmentRepository.DeleteByGameID: %w", err)
	}
	return nil
}
