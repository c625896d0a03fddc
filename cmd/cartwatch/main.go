// Command cartwatch follows one session's cart the way the storefront page
// does: it loads the cart, then applies pushed status updates and reprices
// after each one.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fabrication-service/config"
	"fabrication-service/internal/cache"
	"fabrication-service/internal/cart"
	"fabrication-service/internal/cartclient"
	"fabrication-service/internal/logger"
	"fabrication-service/internal/models"
	"fabrication-service/internal/pricing"
	"fabrication-service/internal/realtime"

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

	cfg := config.LoadWatch(log)

	redisClient, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
	if err != nil {
		log.Fatal("failed to create redis client", zap.Error(err))
	}
	defer redisClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := cart.NewStore(log)
	syncer := cart.NewSyncer(store, cartclient.New(cfg.APIBaseURL, 15*time.Second, log), log)

	if err := syncer.Refresh(ctx, cfg.SessionID); err != nil {
		log.Fatal("failed to load cart", zap.Error(err))
	}
	logSummary(log, store.List(cfg.SessionID))

	rec := realtime.NewReconciler(cfg.SessionID, store, log)
	rec.OnApplied = func(ev realtime.Event) {
		log.Info("file status changed",
			zap.String("file_id", ev.Report.FileID.String()),
			zap.String("status", string(ev.Report.Status)),
		)
		logSummary(log, store.List(cfg.SessionID))
	}

	channel := realtime.NewRedisChannel(redisClient.Client(), cfg.RealtimeChannel, log)
	log.Info("watching cart", zap.String("session_id", cfg.SessionID), zap.String("channel", cfg.RealtimeChannel))
	if err := rec.Run(ctx, channel); err != nil {
		log.Fatal("push channel failed", zap.Error(err))
	}

	st := rec.Stats()
	log.Info("cartwatch stopped",
		zap.Uint64("applied", st.Applied),
		zap.Uint64("malformed", st.Malformed),
		zap.Uint64("foreign", st.Foreign),
		zap.Uint64("unknown", st.Unknown),
	)
}

func logSummary(log *zap.Logger, items []models.CartItem) {
	s := pricing.Summarize(items, models.OrderOptions{})
	log.Info("cart",
		zap.Int("items", s.ItemCount),
		zap.Int("ready_items", s.EligibleCount),
		zap.String("subtotal", pricing.FormatCents(s.SubtotalCents)),
		zap.Bool("processing", s.HasInFlight),
		zap.Bool("errors", s.HasErrored),
		zap.Bool("checkout_ready", s.Ready),
	)
}
