package repository

import (
	"context"
	"database/sql"
	"fmt"

	"pointhunt/internal/domain/model"
	"pointhunt/internal/platform/database"
)

type TeamLocationRepository interface {
	// Upsert keeps only the latest position per (game, team).
	Upsert(ctx context.Context, q database.Querier, loc *model.TeamLocation) error
	ListByGameID(ctx context.Context, gameID string) ([]model.TeamLocation, error)
	DeleteByGameID(ctx context.Context, q database.Querier, gameID string) error
}

type pgTeamLocationRepository struct {
	db *sql.DB
}

func NewPgTeamLocationRepository(db *sql.DB) TeamLocationRepository {
	return &pgTeamLocationRepository{db: db}
}

func (r *pgTeamLocationRepository) Upsert(ctx context.Context, q database.Querier, loc *model.TeamLocation) error {
	query := `INSERT INTO team_locations (game_id, team_id, lat, lng, updated_at)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (game_id, team_id)
	          DO UPDATE SET lat = EXCLUDED.lat, lng = EXCLUDED.lng, updated_at = EXCLUDED.updated_at`
	_, err := q.ExecContext(ctx, query, loc.GameID, loc.TeamID, loc.Lat, loc.Lng, loc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("pgTeamLocationRepository.Upsert: %w", err)
	}
	return nil
}

func (r *pgTeamLocationRepository) ListByGameID(ctx context.Context, gameID string) ([]model.TeamLocation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT game_id, team_id, lat, lng, updated_at
		 FROM team_locations WHERE game_id = $1`, gameID)
	if err != nil {
		return nil, fmt.Errorf("pgTeamLocationRepository.ListByGameID: %w", err)
	}
	defer rows.Close()

	var locations []model.TeamLocation
	for rows.Next() {
		var l model.TeamLocation
		if err := rows.Scan(&l.GameID, &l.TeamID, &l.Lat, &l.Lng, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgTeamLocationRepository.ListByGameID: %w", err)
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

func (r *pgTeamLocationRepository) DeleteByGameID(ctx context.Context, q database.Querier, gameID string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM team_locations WHERE game_id = $1`, gameID); err != nil {
		return fmt.Errorf("pgTeamLocationRepository.DeleteByGameID: %w", err)
	}
	return nil
}
