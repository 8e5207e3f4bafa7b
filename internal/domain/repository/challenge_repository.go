package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"pointhunt/internal/common"
	"pointhunt/internal/domain/model"
)

type ChallengeRepository interface {
	Create(ctx context.Context, challenge *model.Challenge) error
	FindByID(ctx context.Context, id string) (*model.Challenge, error)
	ListByGameID(ctx context.Context, gameID string) ([]model.Challenge, error)
	CountByGameID(ctx context.Context, gameID string) (int, error)
}

type pgChallengeRepository struct {
	db *sql.DB
}

func NewPgChallengeRepository(db *sql.DB) ChallengeRepository {
	return &pgChallengeRepository{db: db}
}

const challengeColumns = `id, game_id, title, description, answer_type, auto_validate, correct_answers, points, location_bound, unlocks_base_id, created_at`

func (r *pgChallengeRepository) Create(ctx context.Context, c *model.Challenge) error {
	answers, err := json.Marshal(c.CorrectAnswers)
	if err != nil {
		return fmt.Errorf("pgChallengeRepository.Create: marshal answers: %w", err)
	}
	query := `INSERT INTO challenges (id, game_id, title, description, answer_type, auto_validate, correct_answers, points, location_bound, unlocks_base_id)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = r.db.ExecContext(ctx, query,
		c.ID, c.GameID, c.Title, c.Description, c.AnswerType, c.AutoValidate, answers,
		c.Points, c.LocationBound, c.UnlocksBaseID)
	if err != nil {
		return fmt.Errorf("pgChallengeRepository.Create: %w", err)
	}
	return nil
}

func (r *pgChallengeRepository) FindByID(ctx context.Context, id string) (*model.Challenge, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+challengeColumns+` FROM challenges WHERE id = $1`, id)
	c, err := scanChallenge(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgChallengeRepository.FindByID: %w", err)
	}
	return c, nil
}

func (r *pgChallengeRepository) ListByGameID(ctx context.Context, gameID string) ([]model.Challenge, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+challengeColumns+` FROM challenges WHERE game_id = $1 ORDER BY created_at`, gameID)
	if err != nil {
		return nil, fmt.Errorf("pgChallengeRepository.ListByGameID: %w", err)
	}
	defer rows.Close()

	var challenges []model.Challenge
	for rows.Next() {
		c, err := scanChallenge(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("pgChallengeRepository.ListByGameID: %w", err)
		}
		challenges = append(challenges, *c)
	}
	return challenges, rows.Err()
}

func (r *pgChallengeRepository) CountByGameID(ctx context.Context, gameID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM challenges WHERE game_id = $1`, gameID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("pgChallengeRepository.CountByGameID: %w", err)
	}
	return n, nil
}

func scanChallenge(scan func(dest ...any) error) (*model.Challenge, error) {
	c := &model.Challenge{}
	var answers []byte
	err := scan(&c.ID, &c.GameID, &c.Title, &c.Description, &c.AnswerType, &c.AutoValidate,
		&answers, &c.Points, &c.LocationBound, &c.UnlocksBaseID, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &c.CorrectAnswers); err != nil {
			return nil, fmt.Errorf("unmarshal correct answers: %w", err)
		}
	}
	return c, nil
}
