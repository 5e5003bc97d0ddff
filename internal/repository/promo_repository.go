package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/brightdays/holiday-club-booking/internal/model"
	"github.com/brightdays/holiday-club-booking/internal/promo"
)

// PromoRepo provides access to promo_codes.  All counter movement goes
// through conditional updates so a scarce code cannot be over-redeemed
// by concurrent bookings.
type PromoRepo struct {
	db *sql.DB
}

// NewPromoRepo returns a new PromoRepo bound to the given database.
func NewPromoRepo(db *sql.DB) *PromoRepo { return &PromoRepo{db: db} }

const promoColumns = `id, code, discount_percent, valid_from, valid_until,
	max_uses, times_used, club_id, is_active, created_at, updated_at`

func scanPromo(row *sql.Row) (*model.PromoCode, error) {
	var p model.PromoCode
	var maxUses sql.NullInt64
	var clubID sql.NullInt64
	err := row.Scan(
		&p.ID, &p.Code, &p.DiscountPercent, &p.ValidFrom, &p.ValidUntil,
		&maxUses, &p.TimesUsed, &clubID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if maxUses.Valid {
		m := uint32(maxUses.Int64)
		p.MaxUses = &m
	}
	if clubID.Valid {
		c := uint64(clubID.Int64)
		p.ClubID = &c
	}
	return &p, nil
}

// ByCode looks a code up case-insensitively, or nil when absent.  Codes
// are stored upper-cased; the input is normalized to match.
func (r *PromoRepo) ByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	const q = `SELECT ` + promoColumns + ` FROM promo_codes WHERE code = ?`
	return scanPromo(r.db.QueryRowContext(ctx, q, strings.ToUpper(strings.TrimSpace(code))))
}

// ByID returns a code by primary key, or nil when absent.
func (r *PromoRepo) ByID(ctx context.Context, id uint64) (*model.PromoCode, error) {
	const q = `SELECT ` + promoColumns + ` FROM promo_codes WHERE id = ?`
	return scanPromo(r.db.QueryRowContext(ctx, q, id))
}

// Create inserts a new promo code for the admin API.  A duplicate code
// maps to ErrConflict.
func (r *PromoRepo) Create(ctx context.Context, p *model.PromoCode) error {
	const q = `INSERT INTO promo_codes
	           (code, discount_percent, valid_from, valid_until, max_uses, club_id, is_active)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	var maxUses interface{}
	if p.MaxUses != nil {
		maxUses = *p.MaxUses
	}
	var clubID interface{}
	if p.ClubID != nil {
		clubID = *p.ClubID
	}
	res, err := r.db.ExecContext(ctx, q,
		strings.ToUpper(strings.TrimSpace(p.Code)), p.DiscountPercent,
		p.ValidFrom, p.ValidUntil, maxUses, clubID, p.IsActive,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 { // duplicate key
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// consumePromoTx takes one use of a code with a cap check in a single
// statement.  Zero affected rows means the cap is hit (or the code was
// deactivated mid-flight).
func consumePromoTx(ctx context.Context, tx *sql.Tx, promoID uint64) error {
	const q = `UPDATE promo_codes SET times_used = times_used + 1
	           WHERE id = ? AND is_active = 1 AND (max_uses IS NULL OR times_used < max_uses)`
	res, err := tx.ExecContext(ctx, q, promoID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return promo.ErrUsageExhausted
	}
	return nil
}

// releasePromoTx hands a use back, flooring at zero.
func releasePromoTx(ctx context.Context, tx *sql.Tx, promoID uint64) error {
	const q = `UPDATE promo_codes SET times_used = times_used - 1 WHERE id = ? AND times_used > 0`
	_, err := tx.ExecContext(ctx, q, promoID)
	return err
}
