package repository

import (
	"context"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const adminColumns = `id, email, password_hash, name, is_active, created_at, updated_at`

func scanAdmin(row rowScanner) (*models.Admin, error) {
	var a models.Admin
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Name,
		&a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAdmin сохраняет администратора.
func (s *Storage) CreateAdmin(ctx context.Context, admin models.Admin) (*models.Admin, error) {
	const op = "storage.CreateAdmin"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `INSERT INTO admins (email, password_hash, name)
			  VALUES ($1, $2, $3)
			  RETURNING ` + adminColumns
	created, err := scanAdmin(s.DB.QueryRowContext(ctx, query, admin.Email, admin.PasswordHash, admin.Name))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return created, nil
}

// GetAdminByEmail ищет администратора по email.
func (s *Storage) GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	const op = "storage.GetAdminByEmail"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	a, err := scanAdmin(s.DB.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admins WHERE email = $1`, email))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return a, nil
}
