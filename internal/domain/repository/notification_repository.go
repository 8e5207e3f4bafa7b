package repository

import (
	"context"
	"database/sql"
	"fmt"

	"pointhunt/internal/domain/model"
	"pointhunt/internal/platform/database"
)

type NotificationRepository interface {
	Create(ctx context.Context, q database.Querier, n *model.Notification) error
	ListByGameID(ctx context.Context, gameID string) ([]model.Notification, error)
}

type pgNotificationRepository struct {
	db *sql.DB
}

func NewPgNotificationRepository(db *sql.DB) NotificationRepository {
	return &pgNotificationRepository{db: db}
}

func (r *pgNotificationRepository) Create(ctx context.Context, q database.Querier, n *model.Notification) error {
	query := `INSERT INTO notifications (id, game_id, title, message, created_by, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := q.ExecContext(ctx, query, n.ID, n.GameID, n.Title, n.Message, n.CreatedBy, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("pgNotificationRepository.Create: %w", err)
	}
	return nil
}

func (r *pgNotificationRepository) ListByGameID(ctx context.Context, gameID string) ([]model.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, title, message, created_by, created_at
		 FROM notifications WHERE game_id = $1 ORDER BY created_at DESC`, gameID)
	if err != nil {
		return nil, fmt.Errorf("pgNotificationRepository.ListByGameID: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.GameID, &n.Title, &n.Message, &n.CreatedBy, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgNotificationRepository.ListByGameID: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
