package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stagedoor/talent-booking/internal/engine"
)

// InvitationHandler exposes the participation sub-workflow: admins
// dispatch booking requests, talents answer them exactly once.
type InvitationHandler struct {
	Engine *engine.Engine
}

// NewInvitationHandler constructs an InvitationHandler.
func NewInvitationHandler(eng *engine.Engine) *InvitationHandler {
	if eng == nil {
		panic("nil engine passed to NewInvitationHandler")
	}
	return &InvitationHandler{Engine: eng}
}

// Invite handles POST /v1/bookings/:id/invitations.
func (h *InvitationHandler) Invite(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body struct {
		TalentID uint64 `json:"talent_id"`
	}
	if err := c.Bind(&body); err != nil || body.TalentID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "talent_id is required"})
	}
	p, err := h.Engine.InviteTalent(c.Request().Context(), actor, bookingID, body.TalentID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, toParticipationJSON(p))
}

// Respond handles POST /v1/invitations/:id/respond.  The action is
// "accept" or "decline"; the answer is final.
func (h *InvitationHandler) Respond(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invitation id"})
	}
	var body struct {
		Action  string  `json:"action"`
		Message *string `json:"message"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	var accept bool
	switch strings.ToLower(strings.TrimSpace(body.Action)) {
	case "accept":
		accept = true
	case "decline":
		accept = false
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "action must be accept or decline"})
	}
	p, err := h.Engine.Respond(c.Request().Context(), actor, id, accept, body.Message)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, toParticipationJSON(p))
}
