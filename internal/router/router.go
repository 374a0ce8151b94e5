package router // route registration for the booking API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/stagedoor/talent-booking/internal/config"
	"github.com/stagedoor/talent-booking/internal/handler"
	"github.com/stagedoor/talent-booking/internal/middleware"
)

// Handlers bundles every handler the router wires up.
type Handlers struct {
	Auth        *handler.AuthHandler
	Bookings    *handler.BookingHandler
	Invitations *handler.InvitationHandler
	Contracts   *handler.ContractHandler
}

// Register wires all routes.  Unauthenticated endpoints are the health
// check and /v1/auth; everything else sits behind JWT auth, the role
// allow-list and the rate limiter.  Per-route role guards narrow the
// allow-list further where an operation belongs to one role.
func Register(e *echo.Echo, h Handlers, jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	g := e.Group("/v1/auth")
	g.POST("/register", h.Auth.Register)
	g.POST("/login", h.Auth.Login)

	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(jwtSecret))
	v1.Use(middleware.RequireRole("ADMIN", "TALENT", "CLIENT"))
	v1.Use(middleware.NewTokenBucket(rlCfg, rdb))

	v1.GET("/me", h.Auth.Me)

	adminOrClient := middleware.RequireRole("ADMIN", "CLIENT")
	adminOnly := middleware.RequireRole("ADMIN")
	talentOnly := middleware.RequireRole("TALENT")

	v1.POST("/bookings", h.Bookings.Create, adminOrClient)
	v1.GET("/bookings/:id", h.Bookings.Get)
	v1.POST("/bookings/:id/advance", h.Bookings.Advance, adminOrClient)
	v1.POST("/bookings/:id/cancel", h.Bookings.Cancel, adminOrClient)

	v1.POST("/bookings/:id/invitations", h.Invitations.Invite, adminOnly)
	v1.POST("/invitations/:id/respond", h.Invitations.Respond, talentOnly)

	v1.POST("/contracts", h.Contracts.Create, adminOnly)
	v1.POST("/contracts/:id/send", h.Contracts.Send, adminOnly)
	v1.POST("/contracts/:id/cancel", h.Contracts.Cancel, adminOnly)
	v1.GET("/contracts/:id", h.Contracts.Get)

	// any authenticated user may attempt to sign; the engine's
	// NotSigner guard decides
	v1.POST("/signatures/:id/sign", h.Contracts.Sign)
}
