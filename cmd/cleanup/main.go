package main

import (
	"context"
	"fmt"
	"os"

	"fabrication-service/config"
	"fabrication-service/internal/cleanup"
	"fabrication-service/internal/database"
	"fabrication-service/internal/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}
	defer logger.Sync()

	log := logger.L()
	dbCfg := config.LoadDB(log)
	cleanupCfg := config.LoadCleanup()

	db := database.ConnectDB(&dbCfg.Config, log)
	defer database.CloseDB(db, log)

	cleanupSvc := cleanup.NewCleanupService(db, cleanupCfg.AbandonedAfter, log)

	ctx := context.Background()

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/cleanup/main.go [carts|files|all]")
		fmt.Println("  carts - remove carts abandoned longer than CART_ABANDONED_AFTER")
		fmt.Println("  files - remove uploaded files that belong to no cart")
		fmt.Println("  all   - run full cleanup")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "carts":
		log.Info("running abandoned carts cleanup")
		if err := cleanupSvc.CleanupAbandonedCarts(ctx); err != nil {
			log.Fatal("failed to cleanup abandoned carts", zap.Error(err))
		}
	case "files":
		log.Info("running orphaned files cleanup")
		if err := cleanupSvc.CleanupOrphanedFiles(ctx); err != nil {
			log.Fatal("failed to cleanup orphaned files", zap.Error(err))
		}
	default:
		log.Info("running full cleanup")
		scheduler := cleanup.NewScheduler(cleanupSvc, cleanupCfg.Interval, log)
		if err := scheduler.RunOnceNow(ctx); err != nil {
			log.Fatal("failed to run full cleanup", zap.Error(err))
		}
	}

	log.Info("cleanup completed successfully")
}
