package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pointhunt/internal/common"
	"pointhunt/internal/domain/model"
)

type BaseRepository interface {
	Create(ctx context.Context, base *model.Base) error
	FindByID(ctx context.Context, id string) (*model.Base, error)
	ListByGameID(ctx context.Context, gameID string) ([]model.Base, error)
	CountByGameID(ctx context.Context, gameID string) (int, error)
}

type pgBaseRepository struct {
	db *sql.DB
}

func NewPgBaseRepository(db *sql.DB) BaseRepository {
	return &pgBaseRepository{db: db}
}

const baseColumns = `id, game_id, name, description, lat, lng, fixed_challenge_id, created_at`

func (r *pgBaseRepository) Create(ctx context.Context, base *model.Base) error {
	query := `INSERT INTO bases (id, game_id, name, description, lat, lng, fixed_challenge_id)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		base.ID, base.GameID, base.Name, base.Description, base.Lat, base.Lng, base.FixedChallengeID)
	if err != nil {
		return fmt.Errorf("pgBaseRepository.Create: %w", err)
	}
	return nil
}

func (r *pgBaseRepository) FindByID(ctx context.Context, id string) (*model.Base, error) {
	b := &model.Base{}
	err := r.db.QueryRowContext(ctx, `SELECT `+baseColumns+` FROM bases WHERE id = $1`, id).Scan(
		&b.ID, &b.GameID, &b.Name, &b.Description, &b.Lat, &b.Lng, &b.FixedChallengeID, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgBaseRepository.FindByID: %w", err)
	}
	return b, nil
}

func (r *pgBaseRepository) ListByGameID(ctx context.Context, gameID string) ([]model.Base, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+baseColumns+` FROM bases WHERE game_id = $1 ORDER BY created_at`, gameID)
	if err != nil {
		return nil, fmt.Errorf("pgBaseRepository.ListByGameID: %w", err)
	}
	defer rows.Close()

	var bases []model.Base
	for rows.Next() {
		var b model.Base
		if err := rows.Scan(&b.ID, &b.GameID, &b.Name, &b.Description, &b.Lat, &b.Lng, &b.FixedChallengeID, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgBaseRepository.ListByGameID: %w", err)
		}
		bases = append(bases, b)
	}
	return bases, rows.Err()
}

func (r *pgBaseRepository) CountByGameID(ctx context.Context, gameID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM bases WHERE game_id = $1`, gameID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("pgBaseRepository.CountByGameID: %w", err)
	}
	return n, nil
}
