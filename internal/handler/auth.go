package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stagedoor/talent-booking/internal/model"
	"github.com/stagedoor/talent-booking/internal/repository"
	"github.com/stagedoor/talent-booking/internal/utils"
)

// AuthHandler implements the minimal local identity directory:
// registration fixes a user's role, login mints the access token whose
// claims authorize every engine operation.  Session refresh and logout
// mechanics are deliberately absent; tokens simply expire.
type AuthHandler struct {
	Users        *repository.UserRepo
	JWTSecret    string
	AccessTTLMin int
	BcryptCost   int
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(users *repository.UserRepo, secret string, ttlMin, bcryptCost int) *AuthHandler {
	if users == nil {
		panic("nil repository passed to NewAuthHandler")
	}
	return &AuthHandler{Users: users, JWTSecret: secret, AccessTTLMin: ttlMin, BcryptCost: bcryptCost}
}

// Register handles POST /v1/auth/register.  Role is chosen once at
// registration and never changes.
func (h *AuthHandler) Register(c echo.Context) error {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Email = strings.TrimSpace(strings.ToLower(body.Email))
	role := model.Role(strings.ToUpper(strings.TrimSpace(body.Role)))
	if body.Email == "" || len(body.Password) < 8 || !role.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, password (min 8 chars) and valid role are required"})
	}
	hash, err := utils.HashPassword(body.Password, h.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to hash password"})
	}
	u := &model.User{
		Name:         strings.TrimSpace(body.Name),
		Email:        body.Email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := h.Users.Create(c.Request().Context(), u); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":    u.ID,
		"email": u.Email,
		"role":  string(u.Role),
	})
}

// Login handles POST /v1/auth/login and returns a signed access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	u, err := h.Users.GetByEmail(c.Request().Context(), strings.TrimSpace(strings.ToLower(body.Email)))
	if err != nil || !utils.VerifyPassword(u.PasswordHash, body.Password) {
		// same answer for unknown email and wrong password
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	tok, err := utils.NewAccessToken(h.JWTSecret, u.ID, u.Role, h.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue token"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": tok.Token,
		"expires_at":   tok.Exp.Format(time.RFC3339),
		"role":         string(u.Role),
	})
}

// Me handles GET /v1/me and echoes the authenticated identity.
func (h *AuthHandler) Me(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	u, err := h.Users.GetByID(c.Request().Context(), actor.ID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  string(u.Role),
	})
}
