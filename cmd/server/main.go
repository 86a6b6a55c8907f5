package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"    // optional .env loading for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/library-seat-reservation/internal/catalog"
	"github.com/iliyamo/library-seat-reservation/internal/config"
	"github.com/iliyamo/library-seat-reservation/internal/database"
	"github.com/iliyamo/library-seat-reservation/internal/handler"
	"github.com/iliyamo/library-seat-reservation/internal/hub"
	"github.com/iliyamo/library-seat-reservation/internal/middleware"
	"github.com/iliyamo/library-seat-reservation/internal/model"
	"github.com/iliyamo/library-seat-reservation/internal/queue"
	"github.com/iliyamo/library-seat-reservation/internal/repository"
	"github.com/iliyamo/library-seat-reservation/internal/router"
	queue_publisher "github.com/iliyamo/library-seat-reservation/internal/service"
	"github.com/iliyamo/library-seat-reservation/internal/store"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// The shift catalog is immutable configuration: loaded once here
	// and passed explicitly to everything that needs it.
	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		cat, err = catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			log.Fatalf("catalog: %v", err)
		}
	}
	log.Printf("catalog loaded with %d shifts", len(cat.Shifts()))

	libraryRepo := repository.NewLibraryRepo(db)
	seatRepo := repository.NewSeatRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	userRepo := repository.NewUserRepo(db)

	h := hub.NewHub()
	go h.Run()

	st := store.New(cat, bookingRepo, h, func(ctx context.Context, ev model.ChangeEvent) {
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		// Publish errors are already logged by the publisher; the
		// commit is durable either way.
		_ = queue_publisher.PublishSeatStatusChanged(pctx, queue.SeatStatusChangedEvent{
			LibraryID:   ev.LibraryID,
			SeatID:      ev.SeatID,
			Shift:       ev.Shift,
			Status:      string(ev.Status),
			Actor:       ev.Actor,
			Override:    ev.Override,
			CommitSeq:   ev.CommitSeq,
			CommittedAt: ev.CommittedAt,
		})
	})

	// Audit consumer tails the broker queue and appends to logs/audit.log.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting disabled")
	}
	rl := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(userRepo, cfg.JWTSecret, cfg.AccessTTLMin, cfg.BcryptCost))
	router.RegisterBooking(e,
		handler.NewBookingHandler(st, libraryRepo, seatRepo, cat),
		handler.NewLiveHandler(h, libraryRepo),
		cfg.JWTSecret,
		rl,
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
