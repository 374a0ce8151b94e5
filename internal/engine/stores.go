package engine

import (
	"context"
	"time"

	"github.com/stagedoor/talent-booking/internal/model"
)

// The store interfaces below are the engine's only view of persistence.
// Conditional mutations take the expected current status and report
// whether the row actually changed, mirroring a
// `UPDATE ... WHERE status = ?` with a rows-affected check.  That
// single primitive is what serializes concurrent writers per
// aggregate: the loser of a race observes changed == false and the
// engine decides what that means (a domain error, a retry, or a
// harmless no-op).

// BookingStore persists bookings.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	// UpdateStatus moves the booking from `from` to `to` and reports
	// whether a row changed.  false means the booking was concurrently
	// mutated (or never was in `from`).
	UpdateStatus(ctx context.Context, id uint64, from, to model.BookingStatus) (bool, error)
}

// ParticipationStore persists invitations and responses.
type ParticipationStore interface {
	// Create inserts a new PENDING row.  It returns
	// ErrDuplicatePending when an unresolved row already exists for
	// the same (booking, talent) pair.
	Create(ctx context.Context, p *model.Participation) error
	GetByID(ctx context.Context, id uint64) (*model.Participation, error)
	ListByBooking(ctx context.Context, bookingID uint64) ([]model.Participation, error)
	// ListAcceptedWithoutContract returns accepted participations of
	// the booking that have no non-cancelled contract yet.
	ListAcceptedWithoutContract(ctx context.Context, bookingID uint64) ([]model.Participation, error)
	// Respond resolves a PENDING row and stamps responded_at exactly
	// once.  false means the row was not pending anymore.
	Respond(ctx context.Context, id uint64, status model.RequestStatus, message *string, at time.Time) (bool, error)
}

// ContractStore persists contracts.
type ContractStore interface {
	Create(ctx context.Context, c *model.Contract) error
	GetByID(ctx context.Context, id uint64) (*model.Contract, error)
	ListByBooking(ctx context.Context, bookingID uint64) ([]model.Contract, error)
	// ActiveExists reports whether the participation already has a
	// non-cancelled contract.
	ActiveExists(ctx context.Context, participationID uint64) (bool, error)
	// UpdateStatus is the compare-and-swap at the center of the
	// engine: exactly one caller can win a given from→to edge.
	UpdateStatus(ctx context.Context, id uint64, from, to model.ContractStatus) (bool, error)
}

// SignatureStore persists signature rows.
type SignatureStore interface {
	// CreateBatch spawns the required signer rows for a contract, all
	// PENDING.
	CreateBatch(ctx context.Context, sigs []model.Signature) error
	GetByID(ctx context.Context, id uint64) (*model.Signature, error)
	ListByContract(ctx context.Context, contractID uint64) ([]model.Signature, error)
	// MarkSigned records the blob and metadata and stamps signed_at,
	// conditional on the row still being PENDING.
	MarkSigned(ctx context.Context, id uint64, blobRef string, addr, agent *string, at time.Time) (bool, error)
	// ExpirePending marks every still-PENDING row of the contract as
	// EXPIRED.  SIGNED rows are left untouched as historical record.
	ExpirePending(ctx context.Context, contractID uint64) error
}

// Renderer produces the opaque contract content from booking and
// participation data.  The engine stores the result verbatim.
type Renderer interface {
	Render(b *model.Booking, p *model.Participation) (string, error)
}
