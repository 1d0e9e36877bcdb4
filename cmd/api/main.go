// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/discount"
	"github.com/your-org/storefront-backend/internal/domain/gamification"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/redis"
	"github.com/your-org/storefront-backend/internal/interfaces/http"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"github.com/your-org/storefront-backend/internal/pkg/payment"
	"github.com/your-org/storefront-backend/internal/pkg/printful"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := newLogger(cfg)
	logger.WithFields(logrus.Fields{
		"name":        cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Info("Starting API server")

	db, err := postgres.NewConnection(cfg)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient, err := redis.NewConnection(cfg)
	if err != nil {
		logger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	migration := postgres.NewMigration(db.GetDB(), logger)
	if err := migration.RunAutoMigrations(); err != nil {
		logger.Fatalf("Database migration failed: %v", err)
	}
	if err := migration.CreateIndexes(); err != nil {
		logger.Warnf("Index creation failed: %v", err)
	}
	if cfg.IsDevelopment() {
		if err := migration.SeedInitialData(); err != nil {
			logger.Warnf("Data seeding failed: %v", err)
		}
	}

	// Checkout wiring: the session creator and finalizer share the payment
	// gateway; the finalizer additionally gets fulfillment, email and XP
	// side effects.
	gateway := payment.NewStripeGateway(cfg.External.Stripe)
	printfulClient := printful.NewClient(cfg.External.Printful)
	emailService := email.NewEmailService(cfg, logger)
	gamificationService := gamification.NewService(db.GetDB(), cfg, logger)
	if err := gamificationService.SeedBadges(); err != nil {
		logger.Warnf("Badge seeding failed: %v", err)
	}

	inventoryService := inventory.NewService(db.GetDB(), cfg, logger)
	discountService := discount.NewService(db.GetDB(), cfg)
	checkoutStore := checkout.NewStore(db.GetDB(), inventoryService, discountService)
	checkoutService := checkout.NewService(db.GetDB(), redisClient.GetClient(), cfg, logger, gateway)
	finalizer := checkout.NewFinalizer(cfg, logger, checkoutStore, gateway, printfulClient, emailService, gamificationService)

	server := http.NewServer(cfg, db.GetDB(), redisClient.GetClient(), logger, checkoutService, finalizer)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logger.Errorf("Failed to shutdown HTTP server gracefully: %v", err)
	}

	logger.Info("Server shutdown completed")
}

// newLogger builds the process logger from configuration
func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}
