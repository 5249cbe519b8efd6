package main // Entry point of the notification receiver

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-session-booking/internal/config"
	"github.com/iliyamo/event-session-booking/internal/database"
	"github.com/iliyamo/event-session-booking/internal/handler"
	"github.com/iliyamo/event-session-booking/internal/notifier"
	"github.com/iliyamo/event-session-booking/internal/queue"
)

func main() {
	_ = godotenv.Load()

	cfg := config.LoadNotifier()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	// The queue consumer mirrors committed bookings into logs/bookings.log.
	// It only starts when a broker is configured; the webhook path does not
	// depend on it.
	if os.Getenv("RABBITMQ_URL") != "" || os.Getenv("AMQP_URL") != "" {
		go func() {
			if err := queue.StartSessionBookedConsumer(); err != nil {
				log.Printf("booking consumer stopped: %v", err)
			}
		}()
	}

	h := notifier.NewHandler(cfg.Secret, notifier.NewSQLStore(db))

	e := echo.New()
	e.GET("/healthz", handler.Health)
	e.POST("/notify", h.Notify)

	addr := ":" + cfg.Port
	log.Printf("notification receiver listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
