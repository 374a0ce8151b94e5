package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/stagedoor/talent-booking/internal/engine"
	"github.com/stagedoor/talent-booking/internal/model"
)

// ParticipationRepo provides data access to the participations table.
// A participation is one talent's invitation to one booking; the
// uniqueness of an unresolved (booking, talent) pair is enforced here
// with a locking check inside the insert transaction.
type ParticipationRepo struct {
	db *sql.DB
}

// NewParticipationRepo returns a new ParticipationRepo bound to the
// given database.
func NewParticipationRepo(db *sql.DB) *ParticipationRepo { return &ParticipationRepo{db: db} }

const participationColumns = `id, booking_id, talent_id, status, message, responded_at, created_at`

func scanParticipation(row interface{ Scan(...any) error }) (*model.Participation, error) {
	var p model.Participation
	var msg sql.NullString
	var responded sql.NullTime
	if err := row.Scan(&p.ID, &p.BookingID, &p.TalentID, &p.Status, &msg, &responded, &p.CreatedAt); err != nil {
		return nil, err
	}
	if msg.Valid {
		m := msg.String
		p.Message = &m
	}
	if responded.Valid {
		t := responded.Time
		p.RespondedAt = &t
	}
	return &p, nil
}

// Create inserts a PENDING invitation.  It locks any existing rows for
// the (booking, talent) pair first; when an unresolved one exists the
// insert is rejected with engine.ErrDuplicatePending so a talent is
// never invited twice while a prior request is unanswered.
func (r *ParticipationRepo) Create(ctx context.Context, p *model.Participation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var pending int
	const checkQ = `SELECT COUNT(*) FROM participations WHERE booking_id = ? AND talent_id = ? AND status = ? FOR UPDATE`
	if err := tx.QueryRowContext(ctx, checkQ, p.BookingID, p.TalentID, model.RequestPending).Scan(&pending); err != nil {
		return err
	}
	if pending > 0 {
		return engine.ErrDuplicatePending
	}
	const insQ = `INSERT INTO participations (booking_id, talent_id, status) VALUES (?, ?, ?)`
	result, err := tx.ExecContext(ctx, insQ, p.BookingID, p.TalentID, p.Status)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	const selQ = `SELECT ` + participationColumns + ` FROM participations WHERE id = ?`
	stored, err := scanParticipation(tx.QueryRowContext(ctx, selQ, p.ID))
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	*p = *stored
	return nil
}

// GetByID returns the participation or engine.ErrNotFound.
func (r *ParticipationRepo) GetByID(ctx context.Context, id uint64) (*model.Participation, error) {
	const q = `SELECT ` + participationColumns + ` FROM participations WHERE id = ?`
	p, err := scanParticipation(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.ErrNotFound
	}
	return p, err
}

// ListByBooking returns all invitations of a booking, oldest first.
func (r *ParticipationRepo) ListByBooking(ctx context.Context, bookingID uint64) ([]model.Participation, error) {
	const q = `SELECT ` + participationColumns + ` FROM participations WHERE booking_id = ? ORDER BY id`
	return r.list(ctx, q, bookingID)
}

// ListAcceptedWithoutContract returns the booking's accepted
// participations that have no non-cancelled contract yet.  It feeds
// the automatic contract dispatch when a booking enters CONTRACT_SENT.
func (r *ParticipationRepo) ListAcceptedWithoutContract(ctx context.Context, bookingID uint64) ([]model.Participation, error) {
	const q = `SELECT p.id, p.booking_id, p.talent_id, p.status, p.message, p.responded_at, p.created_at
			   FROM participations p
			   LEFT JOIN contracts c ON c.participation_id = p.id AND c.status <> 'CANCELLED'
			   WHERE p.booking_id = ? AND p.status = 'ACCEPTED' AND c.id IS NULL
			   ORDER BY p.id`
	return r.list(ctx, q, bookingID)
}

func (r *ParticipationRepo) list(ctx context.Context, q string, args ...any) ([]model.Participation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	parts := make([]model.Participation, 0)
	for rows.Next() {
		p, err := scanParticipation(rows)
		if err != nil {
			return nil, err
		}
		parts = append(parts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return parts, nil
}

// Respond resolves a PENDING invitation and stamps responded_at
// exactly once.  The WHERE clause on PENDING makes the transition a
// single-winner update: a duplicate concurrent response affects zero
// rows and the engine reports AlreadyResponded.
func (r *ParticipationRepo) Respond(ctx context.Context, id uint64, status model.RequestStatus, message *string, at time.Time) (bool, error) {
	const q = `UPDATE participations SET status = ?, message = ?, responded_at = ? WHERE id = ? AND status = ?`
	var msg any
	if message != nil {
		msg = *message
	}
	result, err := r.db.ExecContext(ctx, q, status, msg, at.UTC(), id, model.RequestPending)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
