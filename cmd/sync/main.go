// cmd/sync/main.go
package main

import (
	"context"
	"flag"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/storefront-backend/internal/pkg/printful"
)

func main() {
	onlyLatest := flag.Bool("only-latest", false, "sync only the most recently added store product")
	timeout := flag.Duration("timeout", 15*time.Minute, "maximum duration for the sync run")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(level)
	}

	db, err := postgres.NewConnection(cfg)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	productService := product.NewService(db.GetDB(), cfg)
	inventoryService := inventory.NewService(db.GetDB(), cfg, logger)
	store := product.NewSyncStore(db.GetDB(), productService, inventoryService)
	client := printful.NewClient(cfg.External.Printful)
	syncService := product.NewSyncService(cfg, logger, client, store)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := syncService.Sync(ctx, product.SyncOptions{OnlyLatest: *onlyLatest})
	if err != nil {
		logger.Fatalf("Catalog sync failed: %v", err)
	}

	logger.WithFields(logrus.Fields{
		"synced":       result.Synced,
		"updated":      result.Updated,
		"new_variants": result.NewVariants,
		"skipped":      result.Skipped,
	}).Info(result.Message)
	if result.FirstError != "" {
		logger.Warnf("First item-level error: %s", result.FirstError)
	}
}
