package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/Nota0515/bhakti/internal/config"
	"github.com/Nota0515/bhakti/internal/database"
	"github.com/Nota0515/bhakti/internal/handler"
	"github.com/Nota0515/bhakti/internal/mail"
	"github.com/Nota0515/bhakti/internal/order"
	"github.com/Nota0515/bhakti/internal/queue"
	"github.com/Nota0515/bhakti/internal/repository"
	"github.com/Nota0515/bhakti/internal/router"
	"github.com/Nota0515/bhakti/internal/session"
)

func main() {
	_ = godotenv.Load() // .env is optional outside local dev

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is unreachable; middleware degrades

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	profiles := repository.NewProfileRepo(db)
	mandals := repository.NewMandalRepo(db)
	orders := repository.NewOrderRepo(db)

	provider := session.NewSQLProvider(cfg, users, tokens, profiles)
	machine := session.NewMachine(provider)
	go machine.Activate(context.Background(), "") // settles anonymous; guarded pages show the interstitial until then

	mailer := mail.NewMailer(cfg.SendgridKey, cfg.MailFrom)
	publisher := &queue.Publisher{}
	checkout := order.NewCheckout(orders, profiles, publisher)

	go queue.StartNotificationConsumer(mailer) // background email + log worker

	e := echo.New()
	e.HideBanner = true

	router.Register(e, cfg, rdb, router.Handlers{
		Session: machine,
		Auth:    handler.NewAuthHandler(provider),
		Email:   handler.NewEmailHandler(mailer),
		Mandal:  handler.NewMandalHandler(mandals, publisher),
		Order:   handler.NewOrderHandler(checkout, orders, mandals, profiles),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
