package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fabrication-service/config"
	"fabrication-service/internal/cache"
	"fabrication-service/internal/cleanup"
	"fabrication-service/internal/consumer"
	"fabrication-service/internal/database"
	"fabrication-service/internal/logger"
	"fabrication-service/internal/orders"
	"fabrication-service/internal/producer"
	"fabrication-service/internal/realtime"
	"fabrication-service/internal/repository"
	"fabrication-service/internal/router"
	"fabrication-service/internal/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	cfg := config.Load(log)

	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	repos := repository.New(db)

	redisClient, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
	if err != nil {
		log.Fatal("failed to create redis client", zap.Error(err))
	}
	defer redisClient.Close()

	channel := realtime.NewRedisChannel(redisClient.Client(), cfg.RealtimeChannel, log)

	jobs := producer.NewJobProducer(cfg.Kafka.Brokers, cfg.Kafka.JobsTopic)
	defer jobs.Close()
	emails := producer.NewEmailProducer(cfg.Kafka.Brokers, cfg.Kafka.EmailTopic)
	defer emails.Close()

	orderClient := orders.NewClient(orders.Config{
		BaseURL:     cfg.Orders.BaseURL,
		APIVersion:  cfg.Orders.APIVersion,
		AccessToken: cfg.Orders.AccessToken,
		Timeout:     cfg.Orders.Timeout,
		MaxRetries:  cfg.Orders.MaxRetries,
	}, log)

	cartSvc := service.NewCartService(repos, jobs, log)
	checkoutSvc := service.NewCheckoutService(service.CheckoutConfig{
		Enabled:         cfg.Checkout.Enabled,
		IdempotencyTTL:  cfg.Checkout.IdempotencyTTL,
		LockTTL:         cfg.Checkout.LockTTL,
		DesignTeamEmail: cfg.Checkout.DesignTeamEmail,
	}, repos, orderClient, redisClient, emails, log)
	ingestSvc := service.NewIngestService(repos, channel, log)

	if !cfg.Checkout.Enabled {
		log.Warn("checkout is disabled, set CHECKOUT_ENABLED=true to accept orders")
	}

	r := router.Router(router.Services{
		Cart:     cartSvc,
		Checkout: checkoutSvc,
		Ingest:   ingestSvc,

		CheckoutEnabled: cfg.Checkout.Enabled,
	}, cfg.CORSOrigins, log)

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	cleanupSvc := cleanup.NewCleanupService(db, cfg.Cleanup.AbandonedAfter, log)
	scheduler := cleanup.NewScheduler(cleanupSvc, cfg.Cleanup.Interval, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Starting HTTP server", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if len(cfg.Kafka.Brokers) > 0 {
		statusConsumer := consumer.NewKafkaStatusConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.StatusTopic, ingestSvc, log)
		defer statusConsumer.Close()
		g.Go(func() error {
			return statusConsumer.Run(gctx)
		})
	} else {
		log.Info("KAFKA_BROKERS not set, status reports accepted over webhook only")
	}

	g.Go(func() error {
		return scheduler.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		log.Error("service stopped with error", zap.Error(err))
		return
	}
	log.Info("service stopped gracefully")
}
