package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/stagedoor/talent-booking/internal/model"
)

// CreateBookingInput carries the fields needed to open a booking.
type CreateBookingInput struct {
	ClientID  uint64
	Title     string
	Location  string
	StartsAt  time.Time
	EndsAt    time.Time
	RateCents *uint64
}

// CreateBooking opens a new booking at INQUIRY.  Admins may open a
// booking on behalf of any client; clients only for themselves.
func (e *Engine) CreateBooking(ctx context.Context, actor Actor, in CreateBookingInput) (*model.Booking, error) {
	switch actor.Role {
	case model.RoleAdmin:
		// may book for any client
	case model.RoleClient:
		if in.ClientID != 0 && in.ClientID != actor.ID {
			return nil, ErrForbidden
		}
		in.ClientID = actor.ID
	default:
		return nil, ErrForbidden
	}
	if in.ClientID == 0 {
		return nil, fmt.Errorf("%w: client is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.StartsAt.IsZero() || in.EndsAt.IsZero() {
		return nil, fmt.Errorf("%w: start and end are required", ErrInvalidInput)
	}
	if in.EndsAt.Before(in.StartsAt) {
		return nil, fmt.Errorf("%w: end precedes start", ErrInvalidInput)
	}
	code, err := newBookingCode()
	if err != nil {
		return nil, err
	}
	b := &model.Booking{
		Code:      code,
		ClientID:  in.ClientID,
		Title:     strings.TrimSpace(in.Title),
		Location:  strings.TrimSpace(in.Location),
		StartsAt:  in.StartsAt.UTC(),
		EndsAt:    in.EndsAt.UTC(),
		RateCents: in.RateCents,
		Status:    model.BookingInquiry,
		CreatedBy: actor.ID,
	}
	if err := e.Bookings.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// AdvanceBooking moves a booking one step forward along the lifecycle.
// SIGNED is never reachable this way; it is set only as a consequence
// of a contract completing.  Entering CONTRACT_SENT dispatches a
// contract for every accepted participation that lacks one.
func (e *Engine) AdvanceBooking(ctx context.Context, actor Actor, bookingID uint64, target model.BookingStatus) (*model.Booking, error) {
	if target == model.BookingSigned {
		return nil, ErrInvalidTransition
	}
	for attempt := 0; attempt < casRetries; attempt++ {
		b, err := e.Bookings.GetByID(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if err := e.authorizeAdvance(actor, b, target); err != nil {
			return nil, err
		}
		if !b.Status.CanAdvanceTo(target) {
			return nil, ErrInvalidTransition
		}
		ok, err := e.Bookings.UpdateStatus(ctx, b.ID, b.Status, target)
		if err != nil {
			return nil, err
		}
		if !ok {
			// lost the race; re-read and re-validate
			continue
		}
		b.Status = target
		if target == model.BookingContractSent {
			e.dispatchContracts(ctx, actor, b)
		}
		e.emit(ctx, Event{
			Type:       EventBookingStatusChanged,
			Recipients: []uint64{b.ClientID, b.CreatedBy},
			BookingID:  b.ID,
			Message:    string(target),
		})
		return b, nil
	}
	return nil, ErrConflict
}

// CancelBooking cancels a non-terminal booking.  Contracts already
// issued are not touched; they are cancelled independently.
func (e *Engine) CancelBooking(ctx context.Context, actor Actor, bookingID uint64) (*model.Booking, error) {
	for attempt := 0; attempt < casRetries; attempt++ {
		b, err := e.Bookings.GetByID(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		switch actor.Role {
		case model.RoleAdmin:
		case model.RoleClient:
			if b.ClientID != actor.ID {
				return nil, ErrForbidden
			}
		default:
			return nil, ErrForbidden
		}
		if b.Status.Terminal() {
			return nil, ErrInvalidTransition
		}
		ok, err := e.Bookings.UpdateStatus(ctx, b.ID, b.Status, model.BookingCancelled)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		b.Status = model.BookingCancelled
		e.emit(ctx, Event{
			Type:       EventBookingStatusChanged,
			Recipients: []uint64{b.ClientID, b.CreatedBy},
			BookingID:  b.ID,
			Message:    string(model.BookingCancelled),
		})
		return b, nil
	}
	return nil, ErrConflict
}

// authorizeAdvance applies the role map for forward transitions:
// admins may drive every step, clients only their own inquiry →
// proposed, talents none.
func (e *Engine) authorizeAdvance(actor Actor, b *model.Booking, target model.BookingStatus) error {
	switch actor.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleClient:
		if b.ClientID == actor.ID && b.Status == model.BookingInquiry && target == model.BookingProposed {
			return nil
		}
		return ErrForbidden
	default:
		return ErrForbidden
	}
}

// dispatchContracts creates and sends a contract for every accepted
// participation of the booking that has no active contract yet.  Each
// pipeline is independent; a failure on one is logged by the contract
// path and does not block the others or the booking transition that
// triggered the dispatch.
func (e *Engine) dispatchContracts(ctx context.Context, actor Actor, b *model.Booking) {
	parts, err := e.Participations.ListAcceptedWithoutContract(ctx, b.ID)
	if err != nil {
		e.logDispatchErr(b.ID, 0, err)
		return
	}
	for i := range parts {
		p := &parts[i]
		c, err := e.createContract(ctx, actor, b, p, nil)
		if err != nil {
			e.logDispatchErr(b.ID, p.ID, err)
			continue
		}
		if _, err := e.SendContract(ctx, actor, c.ID, nil); err != nil {
			e.logDispatchErr(b.ID, p.ID, err)
		}
	}
}

func (e *Engine) logDispatchErr(bookingID, participationID uint64, err error) {
	log.Printf("engine: contract dispatch for booking %d participation %d failed: %v", bookingID, participationID, err)
}
