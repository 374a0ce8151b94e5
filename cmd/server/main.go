package main // Entry point package

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/stagedoor/talent-booking/internal/config"
	"github.com/stagedoor/talent-booking/internal/database"
	"github.com/stagedoor/talent-booking/internal/engine"
	"github.com/stagedoor/talent-booking/internal/handler"
	"github.com/stagedoor/talent-booking/internal/queue"
	"github.com/stagedoor/talent-booking/internal/render"
	"github.com/stagedoor/talent-booking/internal/repository"
	"github.com/stagedoor/talent-booking/internal/router"
	queue_publisher "github.com/stagedoor/talent-booking/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	bookings := repository.NewBookingRepo(db)
	participations := repository.NewParticipationRepo(db)
	contracts := repository.NewContractRepo(db)
	signatures := repository.NewSignatureRepo(db)
	users := repository.NewUserRepo(db)

	eng := engine.New(
		bookings, participations, contracts, signatures,
		queue_publisher.NewPublisher(),
		render.NewTextRenderer(cfg.AgencyName),
		time.Duration(cfg.ContractDueDays)*24*time.Hour,
	)

	h := router.Handlers{
		Auth:        handler.NewAuthHandler(users, cfg.JWTSecret, cfg.AccessTTLMin, cfg.BcryptCost),
		Bookings:    handler.NewBookingHandler(eng, bookings, participations, contracts, signatures),
		Invitations: handler.NewInvitationHandler(eng),
		Contracts:   handler.NewContractHandler(eng, bookings, contracts, signatures),
	}

	// background notification fan-out; reconnects on its own
	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.Register(e, h, cfg.JWTSecret, config.LoadRateLimitConfig(), config.NewRedisClient())

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
