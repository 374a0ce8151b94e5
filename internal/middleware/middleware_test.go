package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/stagedoor/talent-booking/internal/model"
	"github.com/stagedoor/talent-booking/internal/utils"
)

func run(t *testing.T, mw echo.MiddlewareFunc, setup func(c echo.Context)) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}
	handler := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	return rec
}

func TestRequireRole(t *testing.T) {
	t.Run("allowed role passes", func(t *testing.T) {
		rec := run(t, RequireRole("ADMIN", "CLIENT"), func(c echo.Context) {
			c.Set("role", "CLIENT")
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, want 200", rec.Code)
		}
	})

	t.Run("disallowed role rejected", func(t *testing.T) {
		rec := run(t, RequireRole("ADMIN"), func(c echo.Context) {
			c.Set("role", "TALENT")
		})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("code = %d, want 403", rec.Code)
		}
	})

	t.Run("missing role rejected", func(t *testing.T) {
		rec := run(t, RequireRole("ADMIN"), nil)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("code = %d, want 403", rec.Code)
		}
	})
}

func TestJWTAuth(t *testing.T) {
	const secret = "test-secret"

	request := func(t *testing.T, authorization string) (*httptest.ResponseRecorder, echo.Context) {
		t.Helper()
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		handler := JWTAuth(secret)(func(c echo.Context) error {
			return c.String(http.StatusOK, "ok")
		})
		if err := handler(c); err != nil {
			t.Fatalf("handler: %v", err)
		}
		return rec, c
	}

	t.Run("valid token injects claims", func(t *testing.T) {
		at, err := utils.NewAccessToken(secret, 7, model.RoleAdmin, 5)
		if err != nil {
			t.Fatalf("NewAccessToken: %v", err)
		}
		rec, c := request(t, "Bearer "+at.Token)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, want 200", rec.Code)
		}
		if c.Get("role") != string(model.RoleAdmin) {
			t.Fatalf("role = %v, want %s", c.Get("role"), model.RoleAdmin)
		}
		if c.Get("user_id") == nil {
			t.Fatal("user_id not set")
		}
	})

	t.Run("missing header rejected", func(t *testing.T) {
		rec, _ := request(t, "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("code = %d, want 401", rec.Code)
		}
	})

	t.Run("token signed with another secret rejected", func(t *testing.T) {
		at, err := utils.NewAccessToken("other-secret", 7, model.RoleAdmin, 5)
		if err != nil {
			t.Fatalf("NewAccessToken: %v", err)
		}
		rec, _ := request(t, "Bearer "+at.Token)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("code = %d, want 401", rec.Code)
		}
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		rec, _ := request(t, "Bearer not-a-jwt")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("code = %d, want 401", rec.Code)
		}
	})
}
