package repository

import (
	"context"
	"database/sql"
	"fmt"

	"pointhunt/internal/domain/model"
	"pointhunt/internal/platform/database"
)

type ActivityEventRepository interface {
	Create(ctx context.Context, q database.Querier, event *model.ActivityEvent) error
	ListByGameID(ctx context.Context, gameID string, limit int) ([]model.ActivityEvent, error)
	DeleteByGameID(ctx context.Context, q database.Querier, gameID string) error
}

type pgActivityEventRepository struct {
	db *sql.DB
}

func NewPgActivityEventRepository(db *sql.DB) ActivityEventRepository {
	return &pgActivityEventRepository{db: db}
}

func (r *pgActivityEventRepository) Create(ctx context.Context, q database.Querier, event *model.ActivityEvent) error {
	query := `INSERT INTO activity_events (id, game_id, type, team_id, base_id, challenge_id, message, timestamp)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := q.ExecContext(ctx, query,
		event.ID, event.GameID, event.Type, event.TeamID, event.BaseID, event.ChallengeID,
		event.Message, event.Timestamp)
	if err != nil {
		return fmt.Errorf("pgActivityEventRepository.Create: %w", err)
	}
	return nil
}

func (r *pgActivityEventRepository) ListByGameID(ctx context.Context, gameID string, limit int) ([]model.ActivityEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, type, team_id, base_id, challenge_id, message, timestamp
		 FROM activity_events WHERE game_id = $1 ORDER BY timestamp DESC LIMIT $2`, gameID, limit)
	if err != nil {
		return nil, fmt.Errorf("pgActivityEventRepository.ListByGameID: %w", err)
	}
	defer rows.Close()

	var events []model.ActivityEvent
	for rows.Next() {
		var e model.ActivityEvent
		if err := rows.Scan(&e.ID, &e.GameID, &e.Type, &e.TeamID, &e.BaseID, &e.ChallengeID, &e.Message, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("pgActivityEventRepository.ListByGameID: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *pgActivityEventRepository) DeleteByGameID(ctx context.Context, q database.Querier, gameID string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM activity_events WHERE game_id = $1`, gameID); err != nil {
		return fmt.Errorf("pgActivityEventRepository.DeleteByGameID: %w", err)
	}
	return nil
}
