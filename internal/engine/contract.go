package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/stagedoor/talent-booking/internal/model"
)

// CreateContract materializes a DRAFT contract for an accepted
// participation.  The participation must belong to the booking, must
// be ACCEPTED, and must not already have a non-cancelled contract
// (the 1:1 invariant).  Content is produced by the renderer and stored
// verbatim.
func (e *Engine) CreateContract(ctx context.Context, actor Actor, bookingID, participationID uint64, dueAt *time.Time) (*model.Contract, error) {
	if actor.Role != model.RoleAdmin {
		return nil, ErrForbidden
	}
	b, err := e.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	p, err := e.Participations.GetByID(ctx, participationID)
	if err != nil {
		return nil, err
	}
	if p.BookingID != b.ID {
		return nil, fmt.Errorf("%w: participation does not belong to booking", ErrPreconditionFailed)
	}
	return e.createContract(ctx, actor, b, p, dueAt)
}

// createContract is the shared creation path used by CreateContract
// and by the automatic dispatch when a booking enters CONTRACT_SENT.
func (e *Engine) createContract(ctx context.Context, actor Actor, b *model.Booking, p *model.Participation, dueAt *time.Time) (*model.Contract, error) {
	if p.Status != model.RequestAccepted {
		return nil, fmt.Errorf("%w: participation is not accepted", ErrPreconditionFailed)
	}
	exists, err := e.Contracts.ActiveExists(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: participation already has an active contract", ErrPreconditionFailed)
	}
	content, err := e.Renderer.Render(b, p)
	if err != nil {
		return nil, err
	}
	if dueAt == nil && e.DueIn > 0 {
		d := e.now().Add(e.DueIn)
		dueAt = &d
	}
	c := &model.Contract{
		BookingID:       b.ID,
		ParticipationID: p.ID,
		Title:           "Engagement contract " + b.Code,
		Content:         content,
		Status:          model.ContractDraft,
		DueAt:           dueAt,
		CreatedBy:       actor.ID,
	}
	if err := e.Contracts.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SendContract dispatches a DRAFT contract to its signers.  The
// DRAFT → SENT edge is a compare-and-swap, so a concurrent duplicate
// send loses and spawns nothing.  The signer rows are created after
// the swap: a crash in between leaves a SENT contract with zero rows,
// which the completion rule ignores and the expiry sweep can still
// retire.  The talent always signs; coSignerIDs adds configured
// co-signers such as a guardian for a minor.
func (e *Engine) SendContract(ctx context.Context, actor Actor, contractID uint64, coSignerIDs []uint64) (*model.Contract, error) {
	if actor.Role != model.RoleAdmin {
		return nil, ErrForbidden
	}
	c, err := e.Contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if c.Status != model.ContractDraft {
		return nil, ErrInvalidTransition
	}
	p, err := e.Participations.GetByID(ctx, c.ParticipationID)
	if err != nil {
		return nil, err
	}
	ok, err := e.Contracts.UpdateStatus(ctx, c.ID, model.ContractDraft, model.ContractSent)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidTransition
	}
	c.Status = model.ContractSent

	signers := []uint64{p.TalentID}
	seen := map[uint64]struct{}{p.TalentID: {}}
	for _, id := range coSignerIDs {
		if id == 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		signers = append(signers, id)
	}
	sigs := make([]model.Signature, 0, len(signers))
	for _, id := range signers {
		sigs = append(sigs, model.Signature{
			ContractID: c.ID,
			SignerID:   id,
			Status:     model.SignaturePending,
		})
	}
	if err := e.Signatures.CreateBatch(ctx, sigs); err != nil {
		return nil, err
	}
	e.emit(ctx, Event{
		Type:       EventContractSent,
		Recipients: signers,
		BookingID:  c.BookingID,
		ContractID: c.ID,
	})
	return c, nil
}

// CancelContract cancels a DRAFT or SENT contract.  Already-SIGNED
// signature rows are preserved as historical record; PENDING rows stay
// as they are.  Once cancelled the completion rule can never fire for
// this contract.
func (e *Engine) CancelContract(ctx context.Context, actor Actor, contractID uint64) (*model.Contract, error) {
	if actor.Role != model.RoleAdmin {
		return nil, ErrForbidden
	}
	for attempt := 0; attempt < casRetries; attempt++ {
		c, err := e.Contracts.GetByID(ctx, contractID)
		if err != nil {
			return nil, err
		}
		if !c.Status.CanTransitionTo(model.ContractCancelled) {
			return nil, ErrInvalidTransition
		}
		ok, err := e.Contracts.UpdateStatus(ctx, c.ID, c.Status, model.ContractCancelled)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		c.Status = model.ContractCancelled
		return c, nil
	}
	return nil, ErrConflict
}

// CheckExpiry lazily retires a SENT contract whose due date has
// passed, cascading EXPIRED onto its still-PENDING signature rows.
// The check is derived entirely from (status, dueAt, now), so it is
// safe to invoke redundantly from any read or write path; losing the
// swap to a concurrent sweep or signer is not an error.
func (e *Engine) CheckExpiry(ctx context.Context, contractID uint64, now time.Time) (*model.Contract, error) {
	c, err := e.Contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if now.IsZero() {
		now = e.now()
	}
	if c.Status != model.ContractSent || !c.PastDue(now) {
		return c, nil
	}
	ok, err := e.Contracts.UpdateStatus(ctx, c.ID, model.ContractSent, model.ContractExpired)
	if err != nil {
		return nil, err
	}
	if ok {
		c.Status = model.ContractExpired
		if err := e.Signatures.ExpirePending(ctx, c.ID); err != nil {
			return nil, err
		}
		return c, nil
	}
	// someone else moved the contract first; report what it is now
	return e.Contracts.GetByID(ctx, contractID)
}
