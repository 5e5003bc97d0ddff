package repository

import (
	"context"
	"database/sql"

	"github.com/brightdays/holiday-club-booking/internal/model"
)

// ClubRepo provides read access to the clubs table.  Clubs are owned by
// the catalog; the booking core never writes them.
type ClubRepo struct {
	db *sql.DB
}

// NewClubRepo returns a new ClubRepo bound to the given database.
func NewClubRepo(db *sql.DB) *ClubRepo { return &ClubRepo{db: db} }

const clubColumns = `id, slug, name, description, start_date, end_date, min_age, max_age,
	opens_at, midday_at, closes_at, is_active, bookings_open, created_at, updated_at`

func scanClub(row *sql.Row) (*model.Club, error) {
	var c model.Club
	var desc sql.NullString
	err := row.Scan(
		&c.ID, &c.Slug, &c.Name, &desc, &c.StartDate, &c.EndDate, &c.MinAge, &c.MaxAge,
		&c.OpensAt, &c.MiddayAt, &c.ClosesAt, &c.IsActive, &c.BookingsOpen,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		d := desc.String
		c.Description = &d
	}
	return &c, nil
}

// ByID returns a club by primary key, or nil when absent.
func (r *ClubRepo) ByID(ctx context.Context, id uint64) (*model.Club, error) {
	const q = `SELECT ` + clubColumns + ` FROM clubs WHERE id = ?`
	return scanClub(r.db.QueryRowContext(ctx, q, id))
}

// BySlug returns a club by its public slug, or nil when absent.
func (r *ClubRepo) BySlug(ctx context.Context, slug string) (*model.Club, error) {
	const q = `SELECT ` + clubColumns + ` FROM clubs WHERE slug = ?`
	return scanClub(r.db.QueryRowContext(ctx, q, slug))
}

// ListActive returns all active clubs ordered by start date.
func (r *ClubRepo) ListActive(ctx context.Context) ([]model.Club, error) {
	const q = `SELECT ` + clubColumns + ` FROM clubs WHERE is_active = 1 ORDER BY start_date, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Club
	for rows.Next() {
		var c model.Club
		var desc sql.NullString
		if err := rows.Scan(
			&c.ID, &c.Slug, &c.Name, &desc, &c.StartDate, &c.EndDate, &c.MinAge, &c.MaxAge,
			&c.OpensAt, &c.MiddayAt, &c.ClosesAt, &c.IsActive, &c.BookingsOpen,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if desc.Valid {
			d := desc.String
			c.Description = &d
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
