package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/stagedoor/talent-booking/internal/engine"
	"github.com/stagedoor/talent-booking/internal/model"
)

func newContext(t *testing.T) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestGetActor(t *testing.T) {
	t.Run("float subject", func(t *testing.T) {
		c := newContext(t)
		c.Set("user_id", float64(7))
		c.Set("role", "ADMIN")
		a, err := getActor(c)
		if err != nil {
			t.Fatalf("getActor: %v", err)
		}
		if a.ID != 7 || a.Role != model.RoleAdmin {
			t.Fatalf("actor = %+v", a)
		}
	})

	t.Run("string subject", func(t *testing.T) {
		c := newContext(t)
		c.Set("user_id", "12")
		c.Set("role", "TALENT")
		a, err := getActor(c)
		if err != nil {
			t.Fatalf("getActor: %v", err)
		}
		if a.ID != 12 || a.Role != model.RoleTalent {
			t.Fatalf("actor = %+v", a)
		}
	})

	t.Run("missing claims", func(t *testing.T) {
		c := newContext(t)
		if _, err := getActor(c); err == nil {
			t.Fatal("expected error for missing claims")
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		c := newContext(t)
		c.Set("user_id", float64(7))
		c.Set("role", "SUPERUSER")
		if _, err := getActor(c); err == nil {
			t.Fatal("expected error for unknown role")
		}
	})
}

func TestErrorJSON(t *testing.T) {
	cases := []struct {
		err    error
		status int
		kind   string
	}{
		{engine.ErrNotFound, http.StatusNotFound, "not_found"},
		{engine.ErrForbidden, http.StatusForbidden, "forbidden"},
		{engine.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
		{engine.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
		{engine.ErrDuplicatePending, http.StatusConflict, "duplicate_pending"},
		{engine.ErrAlreadyResponded, http.StatusConflict, "already_responded"},
		{engine.ErrPreconditionFailed, http.StatusPreconditionFailed, "precondition_failed"},
		{engine.ErrNotSigner, http.StatusForbidden, "not_signer"},
		{engine.ErrContractNotSignable, http.StatusConflict, "contract_not_signable"},
		{engine.ErrConflict, http.StatusConflict, "conflict"},
		{fmt.Errorf("wrapped: %w", engine.ErrPreconditionFailed), http.StatusPreconditionFailed, "precondition_failed"},
		{fmt.Errorf("plain failure"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := errorJSON(c, tc.err); err != nil {
			t.Fatalf("errorJSON(%v): %v", tc.err, err)
		}
		if rec.Code != tc.status {
			t.Errorf("errorJSON(%v) status = %d, want %d", tc.err, rec.Code, tc.status)
		}
		if !strings.Contains(rec.Body.String(), tc.kind) {
			t.Errorf("errorJSON(%v) body %q missing kind %q", tc.err, rec.Body.String(), tc.kind)
		}
	}
}
