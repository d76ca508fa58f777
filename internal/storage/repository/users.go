package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const userColumns = `id, email, password_hash, first_name, last_name, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser сохраняет нового пользователя и возвращает его с присвоенным ID.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `INSERT INTO users (email, password_hash, first_name, last_name)
			  VALUES ($1, $2, $3, $4)
			  RETURNING ` + userColumns
	created, err := scanUser(s.DB.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.FirstName, user.LastName))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return created, nil
}

// GetUserByEmail ищет пользователя по точному совпадению email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return u, nil
}

// GetUserByID возвращает пользователя по ID независимо от статуса.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUserByID"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return u, nil
}

// ListUsers возвращает всех пользователей, новые первыми.
func (s *Storage) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "storage.ListUsers"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ToggleUserStatus инвертирует признак активности и возвращает новое значение.
func (s *Storage) ToggleUserStatus(ctx context.Context, id string) (bool, error) {
	const op = "storage.ToggleUserStatus"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	var isActive bool
	query := `UPDATE users SET is_active = NOT is_active, updated_at = NOW()
			  WHERE id = $1
			  RETURNING is_active`
	if err := s.DB.QueryRowContext(ctx, query, id).Scan(&isActive); err != nil {
		return false, wrapErr(op, err)
	}
	return isActive, nil
}

// CountActiveUsers возвращает число активных пользователей.
func (s *Storage) CountActiveUsers(ctx context.Context) (int, error) {
	const op = "storage.CountActiveUsers"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE is_active = TRUE`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
