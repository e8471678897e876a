package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/openbid/auction-marketplace/internal/clock"
	"github.com/openbid/auction-marketplace/internal/config"
	"github.com/openbid/auction-marketplace/internal/database"
	"github.com/openbid/auction-marketplace/internal/handler"
	"github.com/openbid/auction-marketplace/internal/lifecycle"
	"github.com/openbid/auction-marketplace/internal/media"
	"github.com/openbid/auction-marketplace/internal/queue"
	"github.com/openbid/auction-marketplace/internal/repository"
	"github.com/openbid/auction-marketplace/internal/router"
	"github.com/openbid/auction-marketplace/internal/utils"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if err := run(cfg); err != nil {
		log.WithField("error", err).Fatal("server exited")
	}
}

func run(cfg config.Config) error {
	utils.InitLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Ensure(ctx, db); err != nil {
		return err
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable, rate limiting and response cache disabled")
	}

	accounts := repository.NewAccountRepo(db)
	auctions := repository.NewAuctionRepo(db)
	bids := repository.NewBidRepo(db)
	commissions := repository.NewCommissionRepo(db)
	proofs := repository.NewPaymentProofRepo(db)
	notifications := repository.NewNotificationRepo(db)
	tokens := repository.NewTokenRepo(db)

	var store media.Store
	if cfg.MediaUploadURL != "" {
		store = media.NewHTTPStore(cfg.MediaUploadURL)
	} else {
		log.Warn("MEDIA_UPLOAD_URL unset, using stub media store")
		store = media.StubStore{}
	}

	amqpURL := os.Getenv("RABBITMQ_URL")
	notifier := queue.NewPublisher(amqpURL)
	go queue.NewConsumer(amqpURL, notifications).Run(ctx)

	clk := clock.Real{}
	ctrl := lifecycle.NewController(db, accounts, auctions, bids, commissions, proofs,
		notifier, clk, cfg.CommissionPercent)
	go lifecycle.NewSweeper(ctrl, cfg.SweepInterval).Run(ctx)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())

	router.Register(e, db, rdb, cfg, router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, accounts, tokens, store, clk),
		Auction:      handler.NewAuctionHandler(accounts, auctions, bids, store, ctrl, clk),
		Bid:          handler.NewBidHandler(accounts, ctrl),
		Commission:   handler.NewCommissionHandler(accounts, proofs, commissions, store),
		Notification: handler.NewNotificationHandler(notifications),
		Admin:        handler.NewAdminHandler(cfg, accounts, auctions, proofs, commissions, notifier, clk),
	})

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		_ = e.Shutdown(context.Background())
	}()

	log.WithFields(log.Fields{"port": cfg.Port, "env": cfg.Env}).Info("listening")
	return e.Start(":" + cfg.Port)
}
