package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/fieldsense/irrigation-control/internal/api/http"
	"github.com/fieldsense/irrigation-control/internal/classifier"
	"github.com/fieldsense/irrigation-control/internal/config"
	"github.com/fieldsense/irrigation-control/internal/irrigation"
	"github.com/fieldsense/irrigation-control/internal/irrigation/providers"
	"github.com/fieldsense/irrigation-control/internal/relay"
	"github.com/fieldsense/irrigation-control/internal/scheduler"
	"github.com/fieldsense/irrigation-control/internal/store"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Classifier artifact: load once, then verify its declared input
	// contract against the feature builder's schema. A mismatch means
	// training and inference have drifted apart; refuse to start.
	forest, err := classifier.Load(cfg.ModelPath)
	if err != nil {
		log.Fatalf("failed to load classifier: %v", err)
	}
	if err := forest.Verify(irrigation.FeatureSchema); err != nil {
		log.Fatalf("classifier schema check failed: %v", err)
	}
	log.Printf("classifier loaded, version %s", forest.Version())

	// Durable store: decision log + relay-command slot.
	st, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: 10 * time.Second,
	}

	currentProvider := providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey)
	forecastProvider := providers.NewOpenMeteoProvider(httpClient)

	// Optional MQTT push channel to the relay controller.
	var publisher irrigation.CommandPublisher
	if cfg.MQTTBroker != "" {
		mqttPub, err := relay.NewRealPublisher(cfg.MQTTBroker, cfg.MQTTClientID)
		if err != nil {
			log.Fatalf("failed to connect to mqtt broker: %v", err)
		}
		defer mqttPub.Close()
		publisher = mqttPub
	}

	// Core service running one cycle end to end.
	service := irrigation.NewService(cfg.Location, currentProvider, forecastProvider, forest, st, publisher)

	// Scheduler driving the cycle at the fixed interval.
	sched := scheduler.New(service, cfg.CycleInterval, cfg.CycleTimeout)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "irrigation-control",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "irrigation-control",
			"model":   forest.Version(),
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, st, service)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal; an in-flight cycle finishes within
	// its timeout before the scheduler's deferred Stop runs.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
