package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/localmart/localmart-backend-go/cart"
	"github.com/localmart/localmart-backend-go/checkout"
	"github.com/localmart/localmart-backend-go/config"
	"github.com/localmart/localmart-backend-go/database"
	"github.com/localmart/localmart-backend-go/handlers"
	"github.com/localmart/localmart-backend-go/helpcenter"
	"github.com/localmart/localmart-backend-go/logger"
	"github.com/localmart/localmart-backend-go/messaging"
	"github.com/localmart/localmart-backend-go/metrics"
	customMiddleware "github.com/localmart/localmart-backend-go/middleware"
	"github.com/localmart/localmart-backend-go/payments"
	"github.com/localmart/localmart-backend-go/receipts"
	"github.com/localmart/localmart-backend-go/reports"
	"github.com/localmart/localmart-backend-go/routes"
	"github.com/robfig/cron/v3"
)

func main() {
	// Load environment variables
	config.LoadEnv()
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	ctx := context.Background()
	store, err := database.OpenDocstore(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to document store")
	}
	kv, err := database.OpenKV(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to key/value store")
	}

	messages := messaging.NewService(store, log)
	carts := cart.NewStore(kv, log)
	functions := payments.NewFunctionsClient(cfg.APIBaseURL, cfg.FunctionsURL)
	recent := receipts.NewRecent(kv)

	var mailer receipts.Mailer
	if cfg.SendCustomReceipt {
		mailer = functions
	}

	help, err := helpcenter.Default()
	if err != nil {
		log.WithError(err).Fatal("Failed to load help center content")
	}

	h := &handlers.Handler{
		Store:     store,
		JWTSecret: cfg.JWTSecret,
		Carts:     carts,
		Messages:  messages,
		Unread:    messaging.NewTracker(store, log),
		Checkout:  checkout.NewService(store, carts, messages, log),
		Detector:  payments.NewCountryDetector(cfg.GeoIPURL, cfg.CountryDetectTimeout, cfg.DefaultCountry, log),
		Connect:   payments.NewConnectService(store, payments.NewConnectClient(cfg.APIBaseURL), log),
		Intents:   payments.NewIntents(store, functions),
		Receipts:  receipts.NewService(store, messages, recent, mailer, log),
		Reports:   reports.NewService(store, log),
		Help:      help,
		Contact:   helpcenter.NewContactService(store, messages, cfg.SupportUserID, log),
		Log:       log,
	}
	contactLimit := customMiddleware.NewRateLimiter(cfg.ContactRatePerMinute, logger.Component(log, "ratelimit"))

	// Background jobs
	scheduler := cron.New()
	if _, err := receipts.SchedulePrune(scheduler, cfg.ReceiptPruneSchedule, recent, log); err != nil {
		log.WithError(err).Fatal("Invalid RECEIPT_PRUNE_SCHEDULE")
	}
	if _, err := scheduler.AddFunc("@hourly", contactLimit.Reset); err != nil {
		log.WithError(err).Fatal("Failed to schedule rate limiter reset")
	}
	scheduler.Start()

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(metrics.Middleware())
	e.Use(customMiddleware.RequestLogger(log))

	// Setup routes
	routes.SetupRoutes(e, h, contactLimit)

	// Start the server
	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP shutdown failed")
	}
	<-scheduler.Stop().Done()
	if err := store.Close(shutdownCtx); err != nil {
		log.WithError(err).Error("Closing document store failed")
	}
	if err := kv.Close(); err != nil {
		log.WithError(err).Error("Closing key/value store failed")
	}
}
