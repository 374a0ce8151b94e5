package engine

import (
	"context"

	"github.com/stagedoor/talent-booking/internal/model"
)

// InviteTalent dispatches a booking request to a talent, creating a
// PENDING participation.  Only admins invite.  A second unresolved
// invitation for the same pair is rejected with ErrDuplicatePending;
// a resolved (declined) pair may be invited again with a fresh row.
func (e *Engine) InviteTalent(ctx context.Context, actor Actor, bookingID, talentID uint64) (*model.Participation, error) {
	if actor.Role != model.RoleAdmin {
		return nil, ErrForbidden
	}
	if talentID == 0 {
		return nil, ErrInvalidInput
	}
	b, err := e.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status.Terminal() {
		return nil, ErrInvalidTransition
	}
	p := &model.Participation{
		BookingID: b.ID,
		TalentID:  talentID,
		Status:    model.RequestPending,
	}
	if err := e.Participations.Create(ctx, p); err != nil {
		return nil, err
	}
	e.emit(ctx, Event{
		Type:       EventInvitationSent,
		Recipients: []uint64{talentID},
		BookingID:  b.ID,
	})
	return p, nil
}

// Respond records a talent's accept or decline.  Only the invited
// talent may respond, exactly once: the transition away from PENDING
// is a conditional update, so a concurrent duplicate response loses
// the race and gets ErrAlreadyResponded instead of overwriting state.
func (e *Engine) Respond(ctx context.Context, actor Actor, participationID uint64, accept bool, message *string) (*model.Participation, error) {
	p, err := e.Participations.GetByID(ctx, participationID)
	if err != nil {
		return nil, err
	}
	if actor.Role != model.RoleTalent || p.TalentID != actor.ID {
		return nil, ErrForbidden
	}
	if p.Status != model.RequestPending {
		return nil, ErrAlreadyResponded
	}
	status := model.RequestDeclined
	evType := EventInvitationDeclined
	if accept {
		status = model.RequestAccepted
		evType = EventInvitationAccepted
	}
	at := e.now()
	ok, err := e.Participations.Respond(ctx, p.ID, status, message, at)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyResponded
	}
	p.Status = status
	p.Message = message
	p.RespondedAt = &at

	b, err := e.Bookings.GetByID(ctx, p.BookingID)
	if err == nil {
		msg := ""
		if message != nil {
			msg = *message
		}
		e.emit(ctx, Event{
			Type:       evType,
			Recipients: []uint64{b.ClientID, b.CreatedBy},
			BookingID:  b.ID,
			Message:    msg,
		})
	}
	return p, nil
}
