package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"careminder/internal/model"
)

// NotificationRepository is the ordered notification log. Newest entries
// come back first; nothing expires until it is explicitly removed.
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

func (r *NotificationRepository) Insert(ctx context.Context, n *model.Notification) (int64, error) {
	r.logger.Debug("Inserting notification",
		zap.String("kind", string(n.Kind)),
		zap.String("title", n.Title),
	)

	query := `
        INSERT INTO notifications (kind, title, message, priority)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query, n.Kind, n.Title, n.Message, n.Priority).
		Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert notification", zap.Error(err))
		return 0, err
	}

	r.logger.Info("Notification inserted",
		zap.Int64("id", n.ID),
		zap.String("kind", string(n.Kind)),
	)
	return n.ID, nil
}

// MarkRead flips the read flag. Marking an already-read notification is a
// no-op, so the call is idempotent.
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *NotificationRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *NotificationRepository) ClearAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM notifications`)
	return err
}

// ListAll returns every notification, most recent first.
func (r *NotificationRepository) ListAll(ctx context.Context) ([]model.Notification, error) {
	query := `
        SELECT id, kind, title, message, priority, is_read, created_at
        FROM notifications
        ORDER BY created_at DESC, id DESC
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(
			&n.ID,
			&n.Kind,
			&n.Title,
			&n.Message,
			&n.Priority,
			&n.IsRead,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *NotificationRepository) CountUnread(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE is_read = FALSE`).Scan(&count)
	return count, err
}
