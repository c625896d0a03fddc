package main

import (
	"context"
	"os"

	"fabrication-service/config"
	"fabrication-service/internal/database"
	"fabrication-service/internal/logger"
	"fabrication-service/internal/migrate"

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

	db := database.ConnectDBForMigration(&dbCfg.Config, log)
	defer database.CloseDB(db, log)

	ctx := context.Background()
	opts := migrate.DefaultMigrateOptions()

	if err := migrate.MigrateFabricationDB(ctx, db, log, opts); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	log.Info("migration completed")
}
