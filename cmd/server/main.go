package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"dispatch/internal/app"
	"dispatch/internal/config"
	"dispatch/internal/geocode"
	"dispatch/internal/handler"
	internalRedis "dispatch/internal/redis"
	"dispatch/internal/repository/postgres"
	"dispatch/internal/rules"
	"dispatch/internal/service"
	"dispatch/internal/slack"
	"dispatch/internal/telegram"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Address autocomplete client. Disabled without an API key.
	geocodeService, err := geocode.NewService(cfg.Maps.APIKey)
	if err != nil {
		log.Fatalf("failed to create maps client: %v", err)
	}

	// Wire dependencies.
	server, expiryService := wireServer(db, redisClient, nrApp, geocodeService, cfg)

	// Background pending-ride expiry sweep.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	if expiryService.Enabled() {
		go expiryService.Run(sweepCtx)
		log.Printf("Pending expiry sweep enabled: window=%s", cfg.Expiry.PendingWindow)
	}

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	stopSweep()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server and the
// expiry sweep.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, geocodeService *geocode.Service, cfg *config.Config) (*http.Server, *service.ExpiryService) {
	// Initialize Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	dedupStore := internalRedis.NewDedupStore(redisClient)

	// Initialize repositories.
	rideRepo := postgres.NewRideRepository(db)
	driverRepo := postgres.NewDriverRepository(db)

	// Outbound clients. Either may be unconfigured and no-op.
	botClient := telegram.NewClient(cfg.Telegram.BotToken)
	slackClient := slack.NewClient(cfg.Slack.WebhookURL)

	region := rules.Region{
		Name:               cfg.Region.Name,
		CenterLat:          cfg.Region.CenterLat,
		CenterLng:          cfg.Region.CenterLng,
		ServiceRadiusMiles: cfg.Region.ServiceRadiusMiles,
		MaxTripMiles:       cfg.Region.MaxTripMiles,
		ToleranceMiles:     cfg.Region.ToleranceMiles,
		BaseFare:           cfg.Region.BaseFare,
		PerMileRate:        cfg.Region.PerMileRate,
	}

	// Initialize services.
	notifier := service.NewNotifier(botClient, slackClient, cfg.Telegram.OpsChatID)
	rideService := service.NewRideService(rideRepo, region, notifier)
	dispatchService := service.NewDispatchService(
		rideRepo, driverRepo, lockStore, dedupStore,
		botClient, notifier, cfg.Telegram.RequireVerified,
	)
	adminService := service.NewAdminService(rideRepo, notifier)
	expiryService := service.NewExpiryService(rideRepo, notifier, cfg.Expiry.PendingWindow, cfg.Expiry.SweepInterval)

	// Initialize handlers.
	rideHandler := handler.NewRideHandler(rideService)
	adminHandler := handler.NewAdminHandler(adminService)
	webhookHandler := handler.NewWebhookHandler(dispatchService)
	geocodeHandler := handler.NewGeocodeHandler(geocodeService, region.CenterLat, region.CenterLng)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		RideHandler:    rideHandler,
		AdminHandler:   adminHandler,
		WebhookHandler: webhookHandler,
		GeocodeHandler: geocodeHandler,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
		AdminKey:       cfg.Admin.Key,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, expiryService
}
