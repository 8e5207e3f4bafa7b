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

// ErrDuplicateIdempotencyKey marks the specific race where two inserts
// carried the same idempotency key; the ingestion engine recovers from it
// by re-reading the winner, so it never reaches a caller.
var ErrDuplicateIdempotencyKey = errors.New("submission with this idempotency key already exists")

type SubmissionRepository interface {
	Create(ctx context.Context, q database.Querier, sub *model.Submission) error
	FindByID(ctx context.Context, id string) (*model.Submission, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*model.Submission, error)
	ListByGameID(ctx context.Context, gameID string) ([]model.Submission, error)
	ListByTeamID(ctx context.Context, teamID string) ([]model.Submission, error)
	UpdateReview(ctx context.Context, q database.Querier, id string, status model.SubmissionStatus, reviewedBy string, feedback *string) error
	CountByGameID(ctx context.Context, gameID string) (total, pending int, err error)
	DeleteByGameID(ctx context.Context, q database.Querier, gameID string) error
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

const submissionColumns = `id, game_id, team_id, challenge_id, base_id, answer, file_url, status, submitted_at, reviewed_by, feedback, idempotency_key`

func (r *pgSubmissionRepository) Create(ctx context.Context, q database.Querier, sub *model.Submission) error {
	query := `INSERT INTO submissions (id, game_id, team_id, challenge_id, base_id, answer, file_url, status, submitted_at, idempotency_key)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := q.ExecContext(ctx, query,
		sub.ID, sub.GameID, sub.TeamID, sub.ChallengeID, sub.BaseID, sub.Answer,
		sub.FileURL, sub.Status, sub.SubmittedAt, sub.IdempotencyKey)
	if err != nil {
		if common.IsUniqueViolation(err, database.ConstraintSubmissionIdempotencyKey) {
			return ErrDuplicateIdempotencyKey
		}
		return fmt.Errorf("pgSubmissionRepository.Create: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) FindByID(ctx context.Context, id string) (*model.Submission, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id)
	return scanSubmission(row.Scan)
}

func (r *pgSubmissionRepository) FindByIdempotencyKey(ctx context.Context, key string) (*model.Submission, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE idempotency_key = $1`, key)
	return scanSubmission(row.Scan)
}

func (r *pgSubmissionRepository) ListByGameID(ctx context.Context, gameID string) ([]model.Submission, error) {
	return r.list(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE game_id = $1 ORDER BY submitted_at DESC`, gameID)
}

func (r *pgSubmissionRepository) ListByTeamID(ctx context.Context, teamID string) ([]model.Submission, error) {
	return r.list(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE team_id = $1 ORDER BY submitted_at DESC`, teamID)
}

func (r *pgSubmissionRepository) list(ctx context.Context, query string, args ...any) ([]model.Submission, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.list: %w", err)
	}
	defer rows.Close()

	var subs []model.Submission
	for rows.Next() {
		s, err := scanSubmission(rows.Scan)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *s)
	}
	return subs, rows.Err()
}

func (r *pgSubmissionRepository) UpdateReview(ctx context.Context, q database.Querier, id string, status model.SubmissionStatus, reviewedBy string, feedback *string) error {
	res, err := q.ExecContext(ctx,
		`UPDATE submissions SET status = $1, reviewed_by = $2, feedback = $3 WHERE id = $4`,
		status, reviewedBy, feedback, id)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.UpdateReview: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgSubmissionRepository) CountByGameID(ctx context.Context, gameID string) (int, int, error) {
	var total, pending int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*), count(*) FILTER (WHERE status = 'pending')
		 FROM submissions WHERE game_id = $1`, gameID).Scan(&total, &pending)
	if err != nil {
		return 0, 0, fmt.Errorf("pgSubmissionRepository.CountByGameID: %w", err)
	}
	return total, pending, nil
}

func (r *pgSubmissionRepository) DeleteByGameID(ctx context.Context, q database.Querier, gameID string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM submissions WHERE game_id = $1`, gameID); err != nil {
		return fmt.Errorf("pgSubmissionRepository.DeleteByGameID: %w", err)
	}
	return nil
}

func scanSubmission(scan func(dest ...any) error) (*model.Submission, error) {
	s := &model.Submission{}
	err := scan(&s.ID, &s.GameID, &s.TeamID, &s.ChallengeID, &s.BaseID, &s.Answer,
		&s.FileURL, &s.Status, &s.SubmittedAt, &s.ReviewedBy, &s.Feedback, &s.IdempotencyKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("scanSubmission: %w", err)
	}
	return s, nil
}
