package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const subscriptionSelect = `SELECT s.id, s.user_id, s.category_id, s.name, s.description, s.cost,
			      s.billing_cycle, s.next_billing_date, s.website_url, s.cancel_url,
			      s.is_active, s.created_at, s.updated_at,
			      c.name, c.color, c.icon
			  FROM subscriptions s
			  LEFT JOIN categories c ON c.id = s.category_id`

func scanSubscription(row rowScanner) (*models.Subscription, error) {
	var (
		sub                   models.Subscription
		categoryID            sql.NullInt64
		catName, color, icons sql.NullString
	)
	if err := row.Scan(&sub.ID, &sub.UserID, &categoryID, &sub.Name, &sub.Description, &sub.Cost,
		&sub.BillingCycle, &sub.NextBillingDate, &sub.WebsiteURL, &sub.CancelURL,
		&sub.IsActive, &sub.CreatedAt, &sub.UpdatedAt,
		&catName, &color, &icons); err != nil {
		return nil, err
	}
	sub.CategoryID = intPtr(categoryID)
	sub.CategoryName = strPtr(catName)
	sub.CategoryColor = strPtr(color)
	sub.CategoryIcon = strPtr(icons)
	return &sub, nil
}

func (s *Storage) querySubscriptions(ctx context.Context, op, query string, args ...any) ([]models.Subscription, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CreateSubscription вставляет подписку и возвращает её ID.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	const op = "storage.CreateSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	query := `INSERT INTO subscriptions (user_id, category_id, name, description, cost,
			      billing_cycle, next_billing_date, website_url, cancel_url)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING id`
	var id int
	if err := s.DB.QueryRowContext(ctx, query,
		sub.UserID, nullableInt(sub.CategoryID), sub.Name, sub.Description, sub.Cost,
		sub.BillingCycle, sub.NextBillingDate, sub.WebsiteURL, sub.CancelURL).Scan(&id); err != nil {
		return 0, wrapErr(op, err)
	}
	return id, nil
}

// GetSubscription возвращает активную подписку пользователя.
func (s *Storage) GetSubscription(ctx context.Context, userID string, id int) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := subscriptionSelect + `
			  WHERE s.id = $1 AND s.user_id = $2 AND s.is_active = TRUE`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return sub, nil
}

// ListSubscriptions возвращает активные подписки пользователя по дате продления.
func (s *Storage) ListSubscriptions(ctx context.Context, userID string) ([]models.Subscription, error) {
	const op = "storage.ListSubscriptions"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := subscriptionSelect + `
			  WHERE s.user_id = $1 AND s.is_active = TRUE
			  ORDER BY s.next_billing_date ASC, s.id`
	return s.querySubscriptions(ctx, op, query, userID)
}

// ListSubscriptionsByCategory возвращает активные подписки пользователя в категории.
func (s *Storage) ListSubscriptionsByCategory(ctx context.Context, userID string, categoryID int) ([]models.Subscription, error) {
	const op = "storage.ListSubscriptionsByCategory"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := subscriptionSelect + `
			  WHERE s.user_id = $1 AND s.category_id = $2 AND s.is_active = TRUE
			  ORDER BY s.next_billing_date ASC, s.id`
	return s.querySubscriptions(ctx, op, query, userID, categoryID)
}

// ListActiveSubscriptions возвращает все активные подписки системы.
func (s *Storage) ListActiveSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	const op = "storage.ListActiveSubscriptions"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := subscriptionSelect + `
			  WHERE s.is_active = TRUE
			  ORDER BY s.id`
	return s.querySubscriptions(ctx, op, query)
}

// UpdateSubscription частично обновляет активную подписку пользователя
// и возвращает число изменённых строк.
func (s *Storage) UpdateSubscription(ctx context.Context, userID string, id int, patch models.SubscriptionPatch) (int64, error) {
	const op = "storage.UpdateSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var cost, nextDate any
	if patch.Cost != nil {
		cost = *patch.Cost
	}
	if patch.NextBillingDate != nil {
		nextDate = *patch.NextBillingDate
	}
	var cycle any
	if patch.BillingCycle != nil {
		cycle = string(*patch.BillingCycle)
	}

	query := `UPDATE subscriptions
			  SET name = COALESCE($1, name),
			      description = $2,
			      cost = COALESCE($3::NUMERIC, cost),
			      billing_cycle = COALESCE($4, billing_cycle),
			      next_billing_date = COALESCE($5::DATE, next_billing_date),
			      category_id = $6,
			      website_url = $7,
			      cancel_url = $8,
			      updated_at = NOW()
			  WHERE id = $9 AND user_id = $10 AND is_active = TRUE`
	result, err := s.DB.ExecContext(ctx, query,
		patch.Name, patch.Description, cost, cycle, nextDate,
		nullableInt(patch.CategoryID), patch.WebsiteURL, patch.CancelURL, id, userID)
	if err != nil {
		return 0, wrapErr(op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// DeactivateSubscription мягко удаляет подписку пользователя.
func (s *Storage) DeactivateSubscription(ctx context.Context, userID string, id int) (int64, error) {
	const op = "storage.DeactivateSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	query := `UPDATE subscriptions SET is_active = FALSE, updated_at = NOW()
			  WHERE id = $1 AND user_id = $2 AND is_active = TRUE`
	result, err := s.DB.ExecContext(ctx, query, id, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// CountActiveSubscriptions возвращает число активных подписок системы.
func (s *Storage) CountActiveSubscriptions(ctx context.Context) (int, error) {
	const op = "storage.CountActiveSubscriptions"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM subscriptions WHERE is_active = TRUE`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// ReminderCandidates возвращает активные подписки активных пользователей,
// продлевающиеся в интервале [from, to], по которым ещё нет напоминания.
func (s *Storage) ReminderCandidates(ctx context.Context, from, to models.Date) ([]models.ReminderCandidate, error) {
	const op = "storage.ReminderCandidates"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT s.id, s.user_id, s.category_id, s.name, s.description, s.cost,
			      s.billing_cycle, s.next_billing_date, s.website_url, s.cancel_url,
			      s.is_active, s.created_at, s.updated_at,
			      c.name, c.color, c.icon,
			      u.email, u.first_name
			  FROM subscriptions s
			  JOIN users u ON u.id = s.user_id AND u.is_active = TRUE
			  LEFT JOIN categories c ON c.id = s.category_id
			  WHERE s.is_active = TRUE
			    AND s.next_billing_date BETWEEN $1 AND $2
			    AND NOT EXISTS (
			        SELECT 1 FROM notifications n
			        WHERE n.subscription_id = s.id
			          AND n.type = 'renewal_reminder'
			          AND n.scheduled_for = s.next_billing_date::TIMESTAMPTZ
			    )
			  ORDER BY s.next_billing_date, s.id`
	rows, err := s.DB.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.ReminderCandidate, 0)
	for rows.Next() {
		var (
			c                     models.ReminderCandidate
			categoryID            sql.NullInt64
			catName, color, icons sql.NullString
		)
		sub := &c.Subscription
		if err = rows.Scan(&sub.ID, &sub.UserID, &categoryID, &sub.Name, &sub.Description, &sub.Cost,
			&sub.BillingCycle, &sub.NextBillingDate, &sub.WebsiteURL, &sub.CancelURL,
			&sub.IsActive, &sub.CreatedAt, &sub.UpdatedAt,
			&catName, &color, &icons, &c.Email, &c.FirstName); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		sub.CategoryID = intPtr(categoryID)
		sub.CategoryName = strPtr(catName)
		sub.CategoryColor = strPtr(color)
		sub.CategoryIcon = strPtr(icons)
		result = append(result, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
