package engine

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"time"

	"github.com/stagedoor/talent-booking/internal/model"
)

// Notification event types emitted toward the notifier.
const (
	EventInvitationSent       = "invitation_sent"
	EventInvitationAccepted   = "invitation_accepted"
	EventInvitationDeclined   = "invitation_declined"
	EventContractSent         = "contract_sent"
	EventContractFullySigned  = "contract_fully_signed"
	EventBookingStatusChanged = "booking_status_changed"
)

// Event is a lifecycle notification handed to the Notifier.  Delivery
// is fire-and-forget: a failed emit is logged and never rolls back the
// state transition that produced it.
type Event struct {
	Type       string
	Recipients []uint64
	BookingID  uint64
	ContractID uint64
	Message    string
}

// Notifier is the engine's write-only sink for lifecycle events.
type Notifier interface {
	Emit(ctx context.Context, ev Event) error
}

// Actor identifies who is performing an operation, as resolved by the
// identity layer (JWT claims in the HTTP deployment).
type Actor struct {
	ID   uint64
	Role model.Role
}

// casRetries bounds internal retries of contended conditional updates
// before ErrConflict is surfaced.
const casRetries = 3

// Engine ties the four state machines together.  All operations are
// synchronous read-validate-write against the stores; no entity state
// is cached between calls.
type Engine struct {
	Bookings       BookingStore
	Participations ParticipationStore
	Contracts      ContractStore
	Signatures     SignatureStore
	Notifier       Notifier
	Renderer       Renderer

	// DueIn is the default signing deadline applied when a contract is
	// created without an explicit due date.  Zero disables deadlines.
	DueIn time.Duration

	now func() time.Time
}

// New constructs an Engine.  All stores and the renderer must be
// non-nil; the notifier may be nil, in which case events are dropped.
func New(b BookingStore, p ParticipationStore, c ContractStore, s SignatureStore, n Notifier, r Renderer, dueIn time.Duration) *Engine {
	if b == nil || p == nil || c == nil || s == nil || r == nil {
		panic("nil dependency passed to engine.New")
	}
	return &Engine{
		Bookings:       b,
		Participations: p,
		Contracts:      c,
		Signatures:     s,
		Notifier:       n,
		Renderer:       r,
		DueIn:          dueIn,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// emit hands an event to the notifier.  Failures are logged and
// swallowed so that notification trouble never surfaces as an
// operation failure.
func (e *Engine) emit(ctx context.Context, ev Event) {
	if e.Notifier == nil {
		return
	}
	if err := e.Notifier.Emit(ctx, ev); err != nil {
		log.Printf("engine: emit %s failed: %v", ev.Type, err)
	}
}

// newBookingCode returns a short human-readable booking code.  Codes
// are assigned exactly once at creation and never mutated.
func newBookingCode() (string, error) {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "BK-" + hex.EncodeToString(b), nil
}
