package engine

import (
	"context"
	"fmt"

	"github.com/stagedoor/talent-booking/internal/model"
)

// SignInput carries one signer's submission.  Addr and Agent are
// advisory capture metadata and are stored as-is.
type SignInput struct {
	BlobRef string
	Addr    *string
	Agent   *string
}

// Sign records one signer's attestation and runs the completion rule.
//
// Guards, in order: the caller must be the row's designated signer;
// the owning contract must be SENT (a lazy expiry check runs first, so
// a submission after the due date fails rather than racing the sweep);
// re-signing an already SIGNED row is an idempotent success with no
// mutation and no duplicate event.
//
// Completion: after the row is marked, all sibling rows are re-read.
// If every one is SIGNED the contract is promoted SENT → SIGNED via
// compare-and-swap and the booking advanced CONTRACT_SENT → SIGNED.
// The swap is what makes promotion exactly-once: when the last two
// signers land concurrently, both may observe the full set, but only
// one wins the edge, and only the winner advances the booking and
// emits contract_fully_signed.
func (e *Engine) Sign(ctx context.Context, actor Actor, signatureID uint64, in SignInput) (*model.Signature, error) {
	sig, err := e.Signatures.GetByID(ctx, signatureID)
	if err != nil {
		return nil, err
	}
	if sig.SignerID != actor.ID {
		return nil, ErrNotSigner
	}
	c, err := e.CheckExpiry(ctx, sig.ContractID, e.now())
	if err != nil {
		return nil, err
	}
	if sig.Status == model.SignatureSigned {
		return sig, nil
	}
	if c.Status != model.ContractSent {
		return nil, fmt.Errorf("%w: contract is %s", ErrContractNotSignable, c.Status)
	}
	if in.BlobRef == "" {
		return nil, fmt.Errorf("%w: signature blob is required", ErrInvalidInput)
	}
	at := e.now()
	ok, err := e.Signatures.MarkSigned(ctx, sig.ID, in.BlobRef, in.Addr, in.Agent, at)
	if err != nil {
		return nil, err
	}
	if !ok {
		// lost a race: either a retried submission signed the row
		// first (idempotent success) or the expiry sweep retired it
		sig, err = e.Signatures.GetByID(ctx, signatureID)
		if err != nil {
			return nil, err
		}
		if sig.Status == model.SignatureSigned {
			return sig, nil
		}
		return nil, fmt.Errorf("%w: signature is %s", ErrContractNotSignable, sig.Status)
	}
	sig.Status = model.SignatureSigned
	sig.BlobRef = &in.BlobRef
	sig.SignerAddr = in.Addr
	sig.SignerAgent = in.Agent
	sig.SignedAt = &at

	if err := e.completeIfFullySigned(ctx, c); err != nil {
		return nil, err
	}
	return sig, nil
}

// completeIfFullySigned re-reads every signature of the contract and,
// iff all are SIGNED, promotes the contract and cascades to the
// booking.  The SENT → SIGNED swap guarantees the cascade and the
// completion event fire exactly once across concurrent callers.
func (e *Engine) completeIfFullySigned(ctx context.Context, c *model.Contract) error {
	sigs, err := e.Signatures.ListByContract(ctx, c.ID)
	if err != nil {
		return err
	}
	if len(sigs) == 0 {
		return nil
	}
	for _, s := range sigs {
		if s.Status != model.SignatureSigned {
			return nil
		}
	}
	won, err := e.Contracts.UpdateStatus(ctx, c.ID, model.ContractSent, model.ContractSigned)
	if err != nil {
		return err
	}
	if !won {
		// a sibling signer promoted first, or the contract was
		// cancelled under us; either way nothing more to do here
		return nil
	}
	c.Status = model.ContractSigned

	// Advance the booking as an explicit consequence of the contract
	// completing.  Conditional on CONTRACT_SENT so that a booking with
	// several contracts advances at most once and never regresses.
	if _, err := e.Bookings.UpdateStatus(ctx, c.BookingID, model.BookingContractSent, model.BookingSigned); err != nil {
		return err
	}

	signers := make([]uint64, 0, len(sigs))
	for _, s := range sigs {
		signers = append(signers, s.SignerID)
	}
	recipients := signers
	if b, err := e.Bookings.GetByID(ctx, c.BookingID); err == nil {
		recipients = append(recipients, b.ClientID, b.CreatedBy)
	}
	e.emit(ctx, Event{
		Type:       EventContractFullySigned,
		Recipients: recipients,
		BookingID:  c.BookingID,
		ContractID: c.ID,
	})
	return nil
}
