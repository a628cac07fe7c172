package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"tableease/internal/model"
)

type NotificationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewNotificationRepository(db *pgxpool.Pool, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *NotificationRepository) Insert(ctx context.Context, n *model.Notification) error {
	r.logger.Debug("Inserting notification",
		zap.Int("user_id", n.UserID),
		zap.String("title", n.Title),
	)

	query := `
        INSERT INTO notifications (user_id, title, message, is_read, created_at)
        VALUES ($1, $2, $3, FALSE, NOW())
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query, n.UserID, n.Title, n.Message).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert notification", zap.Error(err))
		return err
	}

	return nil
}

// ListRecent returns the user's newest notifications, capped at limit,
// created_at descending.
func (r *NotificationRepository) ListRecent(ctx context.Context, userID, limit int) ([]model.Notification, error) {
	query := `
        SELECT id, user_id, title, message, is_read, created_at
        FROM notifications
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

// MarkAsRead flips one notification, scoped to its owner so one user
// cannot acknowledge another's.
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id, userID int) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`
	_, err := r.db.Exec(ctx, query, id, userID)
	return err
}

// MarkAllAsRead flips every unread notification for the user.
func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID int) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

func (r *NotificationRepository) GetByID(ctx context.Context, id int) (*model.Notification, error) {
	query := `
        SELECT id, user_id, title, message, is_read, created_at
        FROM notifications
        WHERE id = $1
    `
	var n model.Notification
	err := r.db.QueryRow(ctx, query, id).Scan(
		&n.ID, &n.UserID, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
