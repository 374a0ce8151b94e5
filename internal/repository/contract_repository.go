package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/stagedoor/talent-booking/internal/engine"
	"github.com/stagedoor/talent-booking/internal/model"
)

// ContractRepo provides data access to the contracts table.
type ContractRepo struct {
	db *sql.DB
}

// NewContractRepo returns a new ContractRepo bound to the given database.
func NewContractRepo(db *sql.DB) *ContractRepo { return &ContractRepo{db: db} }

const contractColumns = `id, booking_id, participation_id, title, content, document_ref, status, due_at, created_by, created_at, updated_at`

func scanContract(row interface{ Scan(...any) error }) (*model.Contract, error) {
	var c model.Contract
	var docRef sql.NullString
	var due sql.NullTime
	if err := row.Scan(
		&c.ID, &c.BookingID, &c.ParticipationID, &c.Title, &c.Content,
		&docRef, &c.Status, &due, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if docRef.Valid {
		d := docRef.String
		c.DocumentRef = &d
	}
	if due.Valid {
		t := due.Time
		c.DueAt = &t
	}
	return &c, nil
}

// Create inserts a DRAFT contract and queries the row back to populate
// database-assigned timestamps.
func (r *ContractRepo) Create(ctx context.Context, c *model.Contract) error {
	const q = `INSERT INTO contracts (booking_id, participation_id, title, content, status, due_at, created_by)
			   VALUES (?, ?, ?, ?, ?, ?, ?)`
	var due any
	if c.DueAt != nil {
		due = c.DueAt.UTC()
	}
	result, err := r.db.ExecContext(ctx, q,
		c.BookingID, c.ParticipationID, c.Title, c.Content, c.Status, due, c.CreatedBy,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	stored, err := r.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	*c = *stored
	return nil
}

// GetByID returns the contract or engine.ErrNotFound.
func (r *ContractRepo) GetByID(ctx context.Context, id uint64) (*model.Contract, error) {
	const q = `SELECT ` + contractColumns + ` FROM contracts WHERE id = ?`
	c, err := scanContract(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.ErrNotFound
	}
	return c, err
}

// ListByBooking returns all contracts of a booking, oldest first.
func (r *ContractRepo) ListByBooking(ctx context.Context, bookingID uint64) ([]model.Contract, error) {
	const q = `SELECT ` + contractColumns + ` FROM contracts WHERE booking_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	contracts := make([]model.Contract, 0)
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return contracts, nil
}

// ActiveExists reports whether the participation already has a
// non-cancelled contract.  Backs the 1:1 participation→contract
// invariant.
func (r *ContractRepo) ActiveExists(ctx context.Context, participationID uint64) (bool, error) {
	const q = `SELECT COUNT(*) FROM contracts WHERE participation_id = ? AND status <> 'CANCELLED'`
	var n int
	if err := r.db.QueryRowContext(ctx, q, participationID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdateStatus is the contract compare-and-swap.  Exactly one caller
// can win a given from→to edge; everyone else sees zero rows affected.
func (r *ContractRepo) UpdateStatus(ctx context.Context, id uint64, from, to model.ContractStatus) (bool, error) {
	const q = `UPDATE contracts SET status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ? AND status = ?`
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
