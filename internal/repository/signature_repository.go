package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/stagedoor/talent-booking/internal/engine"
	"github.com/stagedoor/talent-booking/internal/model"
)

// SignatureRepo provides data access to the signatures table.  One row
// exists per required signer per contract; rows are spawned in bulk
// when a contract is sent.
type SignatureRepo struct {
	db *sql.DB
}

// NewSignatureRepo returns a new SignatureRepo bound to the given database.
func NewSignatureRepo(db *sql.DB) *SignatureRepo { return &SignatureRepo{db: db} }

const signatureColumns = `id, contract_id, signer_id, blob_ref, signer_addr, signer_agent, status, signed_at, created_at`

func scanSignature(row interface{ Scan(...any) error }) (*model.Signature, error) {
	var s model.Signature
	var blob, addr, agent sql.NullString
	var signed sql.NullTime
	if err := row.Scan(&s.ID, &s.ContractID, &s.SignerID, &blob, &addr, &agent, &s.Status, &signed, &s.CreatedAt); err != nil {
		return nil, err
	}
	if blob.Valid {
		v := blob.String
		s.BlobRef = &v
	}
	if addr.Valid {
		v := addr.String
		s.SignerAddr = &v
	}
	if agent.Valid {
		v := agent.String
		s.SignerAgent = &v
	}
	if signed.Valid {
		t := signed.Time
		s.SignedAt = &t
	}
	return &s, nil
}

// CreateBatch inserts the required signer rows for a contract in a
// single statement.  Passing an empty slice has no effect and returns
// nil.
func (r *SignatureRepo) CreateBatch(ctx context.Context, sigs []model.Signature) error {
	if len(sigs) == 0 {
		return nil
	}
	query := `INSERT INTO signatures (contract_id, signer_id, status) VALUES `
	args := make([]any, 0, len(sigs)*3)
	for i, s := range sigs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, s.ContractID, s.SignerID, s.Status)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// GetByID returns the signature or engine.ErrNotFound.
func (r *SignatureRepo) GetByID(ctx context.Context, id uint64) (*model.Signature, error) {
	const q = `SELECT ` + signatureColumns + ` FROM signatures WHERE id = ?`
	s, err := scanSignature(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.ErrNotFound
	}
	return s, err
}

// ListByContract returns every signature row of a contract, oldest
// first.  The completion rule evaluates this full set.
func (r *SignatureRepo) ListByContract(ctx context.Context, contractID uint64) ([]model.Signature, error) {
	const q = `SELECT ` + signatureColumns + ` FROM signatures WHERE contract_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sigs := make([]model.Signature, 0)
	for rows.Next() {
		s, err := scanSignature(rows)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sigs, nil
}

// MarkSigned records the blob reference, capture metadata and signing
// instant, conditional on the row still being PENDING.  At most one
// SIGNED transition can ever happen per row.
func (r *SignatureRepo) MarkSigned(ctx context.Context, id uint64, blobRef string, addr, agent *string, at time.Time) (bool, error) {
	const q = `UPDATE signatures SET status = ?, blob_ref = ?, signer_addr = ?, signer_agent = ?, signed_at = ?
			   WHERE id = ? AND status = ?`
	var a, g any
	if addr != nil {
		a = *addr
	}
	if agent != nil {
		g = *agent
	}
	result, err := r.db.ExecContext(ctx, q, model.SignatureSigned, blobRef, a, g, at.UTC(), id, model.SignaturePending)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ExpirePending marks every still-PENDING row of the contract as
// EXPIRED.  SIGNED rows are deliberately left untouched.
func (r *SignatureRepo) ExpirePending(ctx context.Context, contractID uint64) error {
	const q = `UPDATE signatures SET status = ? WHERE contract_id = ? AND status = ?`
	_, err := r.db.ExecContext(ctx, q, model.SignatureExpired, contractID, model.SignaturePending)
	return err
}
