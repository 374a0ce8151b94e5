package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stagedoor/talent-booking/internal/engine"
	"github.com/stagedoor/talent-booking/internal/model"
	"github.com/stagedoor/talent-booking/internal/repository"
)

// BookingHandler exposes the booking lifecycle over HTTP.  All rule
// enforcement lives in the engine; the handler parses input, applies
// read-side visibility and assembles responses.
type BookingHandler struct {
	Engine         *engine.Engine
	Bookings       *repository.BookingRepo
	Participations *repository.ParticipationRepo
	Contracts      *repository.ContractRepo
	Signatures     *repository.SignatureRepo
}

// NewBookingHandler constructs a BookingHandler.  All dependencies
// must be non-nil.
func NewBookingHandler(eng *engine.Engine, b *repository.BookingRepo, p *repository.ParticipationRepo, ct *repository.ContractRepo, s *repository.SignatureRepo) *BookingHandler {
	if eng == nil || b == nil || p == nil || ct == nil || s == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Engine: eng, Bookings: b, Participations: p, Contracts: ct, Signatures: s}
}

// Create handles POST /v1/bookings.
func (h *BookingHandler) Create(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		ClientID  uint64  `json:"client_id"`
		Title     string  `json:"title"`
		Location  string  `json:"location"`
		StartsAt  string  `json:"starts_at"`
		EndsAt    string  `json:"ends_at"`
		RateCents *uint64 `json:"rate_cents"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	starts, err := time.Parse(time.RFC3339, body.StartsAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be RFC3339"})
	}
	ends, err := time.Parse(time.RFC3339, body.EndsAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ends_at must be RFC3339"})
	}
	b, err := h.Engine.CreateBooking(c.Request().Context(), actor, engine.CreateBookingInput{
		ClientID:  body.ClientID,
		Title:     body.Title,
		Location:  body.Location,
		StartsAt:  starts,
		EndsAt:    ends,
		RateCents: body.RateCents,
	})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, toBookingJSON(b))
}

// Get handles GET /v1/bookings/:id.  The response embeds the
// invitation ledger and every contract with its signature rows, so a
// dashboard renders from a single round trip.  Contracts pass through
// the lazy expiry check on the way out.
func (h *BookingHandler) Get(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx := c.Request().Context()
	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		return errorJSON(c, err)
	}
	parts, err := h.Participations.ListByBooking(ctx, b.ID)
	if err != nil {
		return errorJSON(c, err)
	}
	if !mayViewBooking(actor, b, parts) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	contracts, err := h.Contracts.ListByBooking(ctx, b.ID)
	if err != nil {
		return errorJSON(c, err)
	}
	outContracts := make([]contractJSON, 0, len(contracts))
	for i := range contracts {
		ct := &contracts[i]
		if ct.Status == model.ContractSent {
			refreshed, err := h.Engine.CheckExpiry(ctx, ct.ID, time.Time{})
			if err == nil {
				ct = refreshed
			}
		}
		cj := toContractJSON(ct)
		sigs, err := h.Signatures.ListByContract(ctx, ct.ID)
		if err != nil {
			return errorJSON(c, err)
		}
		for j := range sigs {
			cj.Signatures = append(cj.Signatures, toSignatureJSON(&sigs[j]))
		}
		outContracts = append(outContracts, cj)
	}
	outParts := make([]participationJSON, 0, len(parts))
	for i := range parts {
		outParts = append(outParts, toParticipationJSON(&parts[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"booking":        toBookingJSON(b),
		"participations": outParts,
		"contracts":      outContracts,
	})
}

// Advance handles POST /v1/bookings/:id/advance.
func (h *BookingHandler) Advance(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body struct {
		Target string `json:"target"`
	}
	if err := c.Bind(&body); err != nil || body.Target == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "target status is required"})
	}
	b, err := h.Engine.AdvanceBooking(c.Request().Context(), actor, id, model.BookingStatus(body.Target))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, toBookingJSON(b))
}

// Cancel handles POST /v1/bookings/:id/cancel.
func (h *BookingHandler) Cancel(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Engine.CancelBooking(c.Request().Context(), actor, id)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, toBookingJSON(b))
}

// mayViewBooking applies read-side visibility: admins see everything,
// clients their own bookings, talents the bookings they are invited
// to.
func mayViewBooking(actor engine.Actor, b *model.Booking, parts []model.Participation) bool {
	switch actor.Role {
	case model.RoleAdmin:
		return true
	case model.RoleClient:
		return b.ClientID == actor.ID || b.CreatedBy == actor.ID
	case model.RoleTalent:
		for _, p := range parts {
			if p.TalentID == actor.ID {
				return true
			}
		}
	}
	return false
}
