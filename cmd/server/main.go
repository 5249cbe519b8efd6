package main // Entry point of the API server

import (
	"context" // context for the OAuth discovery call
	"log"     // logging library
	"time"    // timeout for the OAuth discovery call

	"github.com/joho/godotenv"    // loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/event-session-booking/internal/auth"
	"github.com/iliyamo/event-session-booking/internal/booking"
	"github.com/iliyamo/event-session-booking/internal/config"
	"github.com/iliyamo/event-session-booking/internal/database"
	"github.com/iliyamo/event-session-booking/internal/handler"
	"github.com/iliyamo/event-session-booking/internal/middleware"
	"github.com/iliyamo/event-session-booking/internal/notify"
	"github.com/iliyamo/event-session-booking/internal/queue"
	"github.com/iliyamo/event-session-booking/internal/repository"
	"github.com/iliyamo/event-session-booking/internal/router"
	queue_publisher "github.com/iliyamo/event-session-booking/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	// Redis backs the OAuth nonce store and the auth-route rate limiter.
	// A nil client disables both: the limiter becomes a no-op and the
	// Google login routes answer 503.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable: rate limiting disabled, google login disabled")
	}

	users := repository.NewUserRepo(db)
	facilitators := repository.NewFacilitatorRepo(db)
	events := repository.NewEventRepo(db)
	sessions := repository.NewSessionRepo(db)
	bookings := repository.NewBookingRepo(db)
	resolver := repository.NewIdentityResolver(users, facilitators)

	var flow handler.Flow
	var nonces handler.NonceStore
	if cfg.GoogleClientID != "" && rdb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		gf, err := auth.NewGoogleFlow(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
		cancel()
		if err != nil {
			log.Printf("google oauth setup failed, google login disabled: %v", err)
		} else {
			flow = gf
			nonces = repository.NewNonceRepo(rdb, cfg.NonceTTL)
		}
	}

	notifier := notify.NewClient(cfg.NotifyURL, cfg.NotifySecret, cfg.NotifyTimeout)
	store := booking.StoreFunc(func(ctx context.Context) (booking.Tx, error) {
		return bookings.Begin(ctx)
	})
	coordinator := booking.NewCoordinator(store, notifier, cfg.NotifyTimeout)
	coordinator.Publish = func(ctx context.Context, ev queue.SessionBookedEvent) error {
		return queue_publisher.PublishSessionBooked(ctx, ev)
	}

	authHandler := handler.NewAuthHandler(cfg, users, facilitators)
	oauthHandler := handler.NewOAuthHandler(cfg, flow, nonces, users, facilitators)
	eventHandler := handler.NewEventHandler(events, sessions, bookings)
	bookingHandler := handler.NewBookingHandler(coordinator)

	e := echo.New()
	router.RegisterRoutes(e)
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	router.RegisterAuth(e, authHandler, oauthHandler, limit)
	router.RegisterAPI(e, authHandler, eventHandler, bookingHandler, middleware.JWTAuth(cfg.JWTSecret, resolver))

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
