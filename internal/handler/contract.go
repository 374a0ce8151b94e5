package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stagedoor/talent-booking/internal/engine"
	"github.com/stagedoor/talent-booking/internal/model"
	"github.com/stagedoor/talent-booking/internal/repository"
)

// ContractHandler exposes the contract factory and the signature
// ledger.  Every read of a SENT contract runs the lazy expiry check
// first, so a contract past its due date is observed as EXPIRED no
// matter which path touches it.
type ContractHandler struct {
	Engine     *engine.Engine
	Bookings   *repository.BookingRepo
	Contracts  *repository.ContractRepo
	Signatures *repository.SignatureRepo
}

// NewContractHandler constructs a ContractHandler.
func NewContractHandler(eng *engine.Engine, b *repository.BookingRepo, ct *repository.ContractRepo, s *repository.SignatureRepo) *ContractHandler {
	if eng == nil || b == nil || ct == nil || s == nil {
		panic("nil dependency passed to NewContractHandler")
	}
	return &ContractHandler{Engine: eng, Bookings: b, Contracts: ct, Signatures: s}
}

// Create handles POST /v1/contracts.
func (h *ContractHandler) Create(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		BookingID       uint64  `json:"booking_id"`
		ParticipationID uint64  `json:"participation_id"`
		DueAt           *string `json:"due_at"`
	}
	if err := c.Bind(&body); err != nil || body.BookingID == 0 || body.ParticipationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking_id and participation_id are required"})
	}
	var dueAt *time.Time
	if body.DueAt != nil {
		t, err := time.Parse(time.RFC3339, *body.DueAt)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "due_at must be RFC3339"})
		}
		dueAt = &t
	}
	ct, err := h.Engine.CreateContract(c.Request().Context(), actor, body.BookingID, body.ParticipationID, dueAt)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, toContractJSON(ct))
}

// Send handles POST /v1/contracts/:id/send.  Optional co_signer_ids
// adds co-signers beyond the talent, such as a guardian for a minor.
func (h *ContractHandler) Send(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid contract id"})
	}
	var body struct {
		CoSignerIDs []uint64 `json:"co_signer_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ct, err := h.Engine.SendContract(c.Request().Context(), actor, id, body.CoSignerIDs)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, toContractJSON(ct))
}

// Cancel handles POST /v1/contracts/:id/cancel.
func (h *ContractHandler) Cancel(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid contract id"})
	}
	ct, err := h.Engine.CancelContract(c.Request().Context(), actor, id)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, toContractJSON(ct))
}

// Get handles GET /v1/contracts/:id, returning the contract, its
// content and its signature rows.  Visible to admins, the booking's
// client and the contract's signers.
func (h *ContractHandler) Get(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid contract id"})
	}
	ctx := c.Request().Context()
	ct, err := h.Engine.CheckExpiry(ctx, id, time.Time{})
	if err != nil {
		return errorJSON(c, err)
	}
	sigs, err := h.Signatures.ListByContract(ctx, ct.ID)
	if err != nil {
		return errorJSON(c, err)
	}
	allowed := actor.Role == model.RoleAdmin
	if !allowed {
		if b, err := h.Bookings.GetByID(ctx, ct.BookingID); err == nil && b.ClientID == actor.ID {
			allowed = true
		}
	}
	if !allowed {
		for _, s := range sigs {
			if s.SignerID == actor.ID {
				allowed = true
				break
			}
		}
	}
	if !allowed {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	cj := toContractJSON(ct)
	for i := range sigs {
		cj.Signatures = append(cj.Signatures, toSignatureJSON(&sigs[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"contract": cj,
		"content":  ct.Content,
	})
}

// Sign handles POST /v1/signatures/:id/sign.  The capture metadata
// (client address and user agent) is recorded as advisory context
// alongside the blob reference.
func (h *ContractHandler) Sign(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid signature id"})
	}
	var body struct {
		BlobRef string `json:"blob_ref"`
	}
	if err := c.Bind(&body); err != nil || body.BlobRef == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "blob_ref is required"})
	}
	addr := c.RealIP()
	agent := c.Request().UserAgent()
	sig, err := h.Engine.Sign(c.Request().Context(), actor, id, engine.SignInput{
		BlobRef: body.BlobRef,
		Addr:    &addr,
		Agent:   &agent,
	})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, toSignatureJSON(sig))
}
