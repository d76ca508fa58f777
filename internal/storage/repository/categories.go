package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const categoryColumns = `id, name, description, color, icon, is_active, created_at, updated_at`

func scanCategory(row rowScanner) (*models.Category, error) {
	var c models.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Color, &c.Icon,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCategories возвращает категории по имени. При onlyActive
// отключённые категории пропускаются.
func (s *Storage) ListCategories(ctx context.Context, onlyActive bool) ([]models.Category, error) {
	const op = "storage.ListCategories"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + categoryColumns + ` FROM categories
			  WHERE ($1 = FALSE OR is_active = TRUE)
			  ORDER BY name`
	rows, err := s.DB.QueryContext(ctx, query, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetCategory возвращает категорию по ID независимо от статуса.
func (s *Storage) GetCategory(ctx context.Context, id int) (*models.Category, error) {
	const op = "storage.GetCategory"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	c, err := scanCategory(s.DB.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return c, nil
}

// CreateCategory сохраняет новую категорию.
func (s *Storage) CreateCategory(ctx context.Context, c models.Category) (*models.Category, error) {
	const op = "storage.CreateCategory"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `INSERT INTO categories (name, description, color, icon)
			  VALUES ($1, $2, $3, $4)
			  RETURNING ` + categoryColumns
	created, err := scanCategory(s.DB.QueryRowContext(ctx, query, c.Name, c.Description, c.Color, c.Icon))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return created, nil
}

// UpdateCategory частично обновляет категорию: nil-поля сохраняют прежнее
// значение, описание заменяется.
func (s *Storage) UpdateCategory(ctx context.Context, id int, patch models.CategoryPatch) (*models.Category, error) {
	const op = "storage.UpdateCategory"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `UPDATE categories
			  SET name = COALESCE($1, name),
			      description = $2,
			      color = COALESCE($3, color),
			      icon = COALESCE($4, icon),
			      updated_at = NOW()
			  WHERE id = $5
			  RETURNING ` + categoryColumns
	updated, err := scanCategory(s.DB.QueryRowContext(ctx, query,
		patch.Name, patch.Description, patch.Color, patch.Icon, id))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return updated, nil
}

// ToggleCategoryStatus инвертирует признак активности категории.
// Подписки категории не затрагиваются.
func (s *Storage) ToggleCategoryStatus(ctx context.Context, id int) (bool, error) {
	const op = "storage.ToggleCategoryStatus"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	var isActive bool
	query := `UPDATE categories SET is_active = NOT is_active, updated_at = NOW()
			  WHERE id = $1
			  RETURNING is_active`
	if err := s.DB.QueryRowContext(ctx, query, id).Scan(&isActive); err != nil {
		return false, wrapErr(op, err)
	}
	return isActive, nil
}

// CategoryUsage возвращает активные категории с числом активных подписок,
// по убыванию числа подписок.
func (s *Storage) CategoryUsage(ctx context.Context) ([]models.CategoryUsage, error) {
	const op = "storage.CategoryUsage"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT c.id, c.name, c.color, c.icon, COUNT(s.id) AS subscription_count
			  FROM categories c
			  LEFT JOIN subscriptions s ON s.category_id = c.id AND s.is_active = TRUE
			  WHERE c.is_active = TRUE
			  GROUP BY c.id, c.name, c.color, c.icon
			  ORDER BY subscription_count DESC, c.name`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.CategoryUsage, 0)
	for rows.Next() {
		var u models.CategoryUsage
		if err = rows.Scan(&u.ID, &u.Name, &u.Color, &u.Icon, &u.SubscriptionCount); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
