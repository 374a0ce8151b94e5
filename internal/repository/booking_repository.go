package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/stagedoor/talent-booking/internal/engine"
	"github.com/stagedoor/talent-booking/internal/model"
)

// BookingRepo provides data access to the bookings table.  All
// timestamps are stored and compared in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle for callers that need to open a
// transaction spanning several repositories.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = `id, code, client_id, title, location, starts_at, ends_at, rate_cents, status, created_by, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*model.Booking, error) {
	var b model.Booking
	var rate sql.NullInt64
	if err := row.Scan(
		&b.ID, &b.Code, &b.ClientID, &b.Title, &b.Location,
		&b.StartsAt, &b.EndsAt, &rate, &b.Status, &b.CreatedBy,
		&b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if rate.Valid {
		v := uint64(rate.Int64)
		b.RateCents = &v
	}
	return &b, nil
}

// Create inserts a new booking and queries the row back so that
// database-assigned timestamps are populated on the passed record.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings (code, client_id, title, location, starts_at, ends_at, rate_cents, status, created_by)
			   VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var rate any
	if b.RateCents != nil {
		rate = *b.RateCents
	}
	result, err := r.db.ExecContext(ctx, q,
		b.Code, b.ClientID, b.Title, b.Location,
		b.StartsAt.UTC(), b.EndsAt.UTC(), rate, b.Status, b.CreatedBy,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	stored, err := r.GetByID(ctx, b.ID)
	if err != nil {
		return err
	}
	*b = *stored
	return nil
}

// GetByID returns the booking or engine.ErrNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.ErrNotFound
	}
	return b, err
}

// UpdateStatus moves the booking from `from` to `to`.  The WHERE
// clause on the current status makes the transition a compare-and-
// swap; the rows-affected count tells the caller whether it won.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, from, to model.BookingStatus) (bool, error) {
	const q = `UPDATE bookings SET status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ? AND status = ?`
	result, err := r.db.ExecContext(ctx, q, to, id, from)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
