package notificationservice

import (
	"context"
	"database/sql"
)

func newNotificationModel(db *sql.DB) *NotificationModel {
	return &NotificationModel{db: db}
}

// insertForRecipients creates one notification per recipient inside a
// single transaction so a publish event never fans out partially.
func (m *NotificationModel) insertForRecipients(ctx context.Context, recipients []int, actorID, postID int, title, verb, message string) (int, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	query := `
		INSERT INTO notifications (user_id, actor_id, post_id, title, verb, message)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for _, recipient := range recipients {
		if _, err := tx.ExecContext(ctx, query, recipient, actorID, postID, title, verb, message); err != nil {
			_ = tx.Rollback()
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return len(recipients), nil
}

func (m *NotificationModel) unreadCount(ctx context.Context, userID int) (int, error) {
	var count int
	err := m.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = false", userID).Scan(&count)
	return count, err
}

// markRead flips the read flag. A notification that does not exist or
// belongs to another user is left untouched; the caller treats both as
// success.
func (m *NotificationModel) markRead(ctx context.Context, id, userID int) error {
	_, err := m.db.ExecContext(ctx, "UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2", id, userID)
	return err
}

func (m *NotificationModel) getByUser(ctx context.Context, userID, limit, offset int) ([]Notification, error) {
	query := `
		SELECT id, user_id, actor_id, post_id, title, verb, message, created_at, read
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := m.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var (
			n      Notification
			actor  sql.NullInt64
			postID sql.NullInt64
		)
		if err := rows.Scan(&n.ID, &n.UserID, &actor, &postID, &n.Title, &n.Verb, &n.Message, &n.CreatedAt, &n.Read); err != nil {
			return nil, err
		}
		if actor.Valid {
			id := int(actor.Int64)
			n.ActorID = &id
		}
		if postID.Valid {
			id := int(postID.Int64)
			n.PostID = &id
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}
