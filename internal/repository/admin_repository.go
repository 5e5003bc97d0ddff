package repository

import (
	"context"
	"database/sql"

	"github.com/brightdays/holiday-club-booking/internal/model"
)

// AdminRepo owns the admin_users table.
type AdminRepo struct {
	db *sql.DB
}

// NewAdminRepo returns a new AdminRepo bound to the given database.
func NewAdminRepo(db *sql.DB) *AdminRepo { return &AdminRepo{db: db} }

// Ensure creates the admin account when it does not exist yet.  An
// existing row is left untouched, password included.
func (r *AdminRepo) Ensure(ctx context.Context, email, passwordHash string) error {
	const q = `INSERT INTO admin_users (email, password_hash)
	           VALUES (?, ?)
	           ON DUPLICATE KEY UPDATE email = email`
	_, err := r.db.ExecContext(ctx, q, email, passwordHash)
	return err
}

// ByEmail returns the admin account with the given email, or nil when
// absent.
func (r *AdminRepo) ByEmail(ctx context.Context, email string) (*model.AdminUser, error) {
	const q = `SELECT id, email, password_hash, is_active, created_at, updated_at
	           FROM admin_users WHERE email = ?`
	var a model.AdminUser
	err := r.db.QueryRowContext(ctx, q, email).Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.IsActive, &a.CreatedAt, &a.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
