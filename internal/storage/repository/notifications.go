package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const notificationColumns = `n.id, n.user_id, n.subscription_id, n.type, n.title, n.message,
			      n.is_read, n.scheduled_for, n.sent_at, n.created_at`

func scanNotification(row rowScanner, withSubscriptionName bool) (*models.Notification, error) {
	var (
		n              models.Notification
		subscriptionID sql.NullInt64
		scheduledFor   sql.NullTime
		sentAt         sql.NullTime
		subName        sql.NullString
	)
	dest := []any{&n.ID, &n.UserID, &subscriptionID, &n.Type, &n.Title, &n.Message,
		&n.IsRead, &scheduledFor, &sentAt, &n.CreatedAt}
	if withSubscriptionName {
		dest = append(dest, &subName)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	n.SubscriptionID = intPtr(subscriptionID)
	n.ScheduledFor = timePtr(scheduledFor)
	n.SentAt = timePtr(sentAt)
	n.SubscriptionName = strPtr(subName)
	return &n, nil
}

// ListNotifications возвращает последние уведомления пользователя.
func (s *Storage) ListNotifications(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	const op = "storage.ListNotifications"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + notificationColumns + `, s.name
			  FROM notifications n
			  LEFT JOIN subscriptions s ON s.id = n.subscription_id
			  WHERE n.user_id = $1
			  ORDER BY n.created_at DESC, n.id DESC
			  LIMIT $2`
	rows, err := s.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows, true)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CreateNotification сохраняет уведомление.
func (s *Storage) CreateNotification(ctx context.Context, n models.Notification) (*models.Notification, error) {
	const op = "storage.CreateNotification"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `INSERT INTO notifications AS n (user_id, subscription_id, type, title, message, scheduled_for)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING ` + notificationColumns
	created, err := scanNotification(s.DB.QueryRowContext(ctx, query,
		n.UserID, nullableInt(n.SubscriptionID), n.Type, n.Title, n.Message, n.ScheduledFor), false)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return created, nil
}

// CreateReminder сохраняет напоминание о продлении на дату renewal.
// Возвращает false, если напоминание на эту дату уже есть.
func (s *Storage) CreateReminder(ctx context.Context, n models.Notification, renewal models.Date) (int, bool, error) {
	const op = "storage.CreateReminder"
	if err := checkCtx(ctx, op); err != nil {
		return 0, false, err
	}

	query := `INSERT INTO notifications (user_id, subscription_id, type, title, message, scheduled_for)
			  VALUES ($1, $2, 'renewal_reminder', $3, $4, $5::DATE::TIMESTAMPTZ)
			  ON CONFLICT (subscription_id, scheduled_for) WHERE type = 'renewal_reminder' DO NOTHING
			  RETURNING id`
	var id int
	err := s.DB.QueryRowContext(ctx, query,
		n.UserID, nullableInt(n.SubscriptionID), n.Title, n.Message, renewal).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, wrapErr(op, err)
	}
	return id, true, nil
}

// MarkNotificationRead отмечает уведомление пользователя прочитанным.
func (s *Storage) MarkNotificationRead(ctx context.Context, userID string, id int) (int64, error) {
	const op = "storage.MarkNotificationRead"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	result, err := s.DB.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// MarkAllNotificationsRead отмечает прочитанными все уведомления пользователя.
func (s *Storage) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	const op = "storage.MarkAllNotificationsRead"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	result, err := s.DB.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// CountUnreadNotifications возвращает число непрочитанных уведомлений.
func (s *Storage) CountUnreadNotifications(ctx context.Context, userID string) (int, error) {
	const op = "storage.CountUnreadNotifications"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var n int
	if err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// MarkNotificationSent проставляет время отправки уведомления.
func (s *Storage) MarkNotificationSent(ctx context.Context, id int) error {
	const op = "storage.MarkNotificationSent"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	result, err := s.DB.ExecContext(ctx, `UPDATE notifications SET sent_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
