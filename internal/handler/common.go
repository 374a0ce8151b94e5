package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stagedoor/talent-booking/internal/engine"
	"github.com/stagedoor/talent-booking/internal/model"
	"github.com/stagedoor/talent-booking/internal/repository"
)

// getActor extracts the authenticated (id, role) pair stored in the
// context by the JWT middleware.  The subject claim arrives as a JSON
// number or string depending on how the token was minted.
func getActor(c echo.Context) (engine.Actor, error) {
	var id uint64
	switch v := c.Get("user_id").(type) {
	case float64:
		id = uint64(v)
	case string:
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return engine.Actor{}, errors.New("invalid subject claim")
		}
		id = n
	default:
		return engine.Actor{}, errors.New("missing subject claim")
	}
	role, _ := c.Get("role").(string)
	if id == 0 || !model.Role(role).Valid() {
		return engine.Actor{}, errors.New("missing identity claims")
	}
	return engine.Actor{ID: id, Role: model.Role(role)}, nil
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// errorJSON translates an engine error into a response carrying both a
// machine-readable kind and a human-readable message, so the
// presentation layer can render an actionable notice per the rule that
// rejected the request.
func errorJSON(c echo.Context, err error) error {
	type kindStatus struct {
		kind   string
		status int
	}
	for target, ks := range map[error]kindStatus{
		engine.ErrNotFound:            {"not_found", http.StatusNotFound},
		engine.ErrForbidden:           {"forbidden", http.StatusForbidden},
		engine.ErrInvalidInput:        {"invalid_input", http.StatusBadRequest},
		engine.ErrInvalidTransition:   {"invalid_transition", http.StatusConflict},
		engine.ErrDuplicatePending:    {"duplicate_pending", http.StatusConflict},
		engine.ErrAlreadyResponded:    {"already_responded", http.StatusConflict},
		engine.ErrPreconditionFailed:  {"precondition_failed", http.StatusPreconditionFailed},
		engine.ErrNotSigner:           {"not_signer", http.StatusForbidden},
		engine.ErrContractNotSignable: {"contract_not_signable", http.StatusConflict},
		engine.ErrConflict:            {"conflict", http.StatusConflict},
		repository.ErrEmailTaken:      {"email_taken", http.StatusConflict},
	} {
		if errors.Is(err, target) {
			return c.JSON(ks.status, echo.Map{"error": err.Error(), "kind": ks.kind})
		}
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error", "kind": "internal"})
}

// Response shapes.  The engine's models carry no JSON tags; the wire
// format is assembled here so storage and presentation stay decoupled.

type bookingJSON struct {
	ID        uint64  `json:"id"`
	Code      string  `json:"code"`
	ClientID  uint64  `json:"client_id"`
	Title     string  `json:"title"`
	Location  string  `json:"location,omitempty"`
	StartsAt  string  `json:"starts_at"`
	EndsAt    string  `json:"ends_at"`
	RateCents *uint64 `json:"rate_cents,omitempty"`
	Status    string  `json:"status"`
	CreatedBy uint64  `json:"created_by"`
}

func toBookingJSON(b *model.Booking) bookingJSON {
	return bookingJSON{
		ID:        b.ID,
		Code:      b.Code,
		ClientID:  b.ClientID,
		Title:     b.Title,
		Location:  b.Location,
		StartsAt:  b.StartsAt.UTC().Format(time.RFC3339),
		EndsAt:    b.EndsAt.UTC().Format(time.RFC3339),
		RateCents: b.RateCents,
		Status:    string(b.Status),
		CreatedBy: b.CreatedBy,
	}
}

type participationJSON struct {
	ID          uint64  `json:"id"`
	BookingID   uint64  `json:"booking_id"`
	TalentID    uint64  `json:"talent_id"`
	Status      string  `json:"status"`
	Message     *string `json:"message,omitempty"`
	RespondedAt *string `json:"responded_at,omitempty"`
}

func toParticipationJSON(p *model.Participation) participationJSON {
	out := participationJSON{
		ID:        p.ID,
		BookingID: p.BookingID,
		TalentID:  p.TalentID,
		Status:    string(p.Status),
		Message:   p.Message,
	}
	if p.RespondedAt != nil {
		iso := p.RespondedAt.UTC().Format(time.RFC3339)
		out.RespondedAt = &iso
	}
	return out
}

type contractJSON struct {
	ID              uint64          `json:"id"`
	BookingID       uint64          `json:"booking_id"`
	ParticipationID uint64          `json:"participation_id"`
	Title           string          `json:"title"`
	Status          string          `json:"status"`
	DueAt           *string         `json:"due_at,omitempty"`
	Signatures      []signatureJSON `json:"signatures,omitempty"`
}

func toContractJSON(ct *model.Contract) contractJSON {
	out := contractJSON{
		ID:              ct.ID,
		BookingID:       ct.BookingID,
		ParticipationID: ct.ParticipationID,
		Title:           ct.Title,
		Status:          string(ct.Status),
	}
	if ct.DueAt != nil {
		iso := ct.DueAt.UTC().Format(time.RFC3339)
		out.DueAt = &iso
	}
	return out
}

type signatureJSON struct {
	ID         uint64  `json:"id"`
	ContractID uint64  `json:"contract_id"`
	SignerID   uint64  `json:"signer_id"`
	Status     string  `json:"status"`
	SignedAt   *string `json:"signed_at,omitempty"`
}

func toSignatureJSON(s *model.Signature) signatureJSON {
	out := signatureJSON{
		ID:         s.ID,
		ContractID: s.ContractID,
		SignerID:   s.SignerID,
		Status:     string(s.Status),
	}
	if s.SignedAt != nil {
		iso := s.SignedAt.UTC().Format(time.RFC3339)
		out.SignedAt = &iso
	}
	return out
}
