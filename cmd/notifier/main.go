package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"fabrication-service/config"
	"fabrication-service/internal/consumer"
	"fabrication-service/internal/logger"
	"fabrication-service/internal/notify"

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

	cfg := config.LoadNotifier(log)

	if len(cfg.Kafka.Brokers) == 0 {
		log.Fatal("no kafka brokers configured (KAFKA_BROKERS)")
	}

	sender, err := notify.NewEmailSender(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		SSL:      cfg.SMTPSSL,
	})
	if err != nil {
		log.Fatal("failed to load email templates", zap.Error(err))
	}

	cons := consumer.NewKafkaEmailConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.EmailTopic, sender, log)
	defer cons.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cons.Run(ctx); err != nil {
		log.Error("consumer stopped", zap.Error(err))
	}
	log.Info("notifier stopped")
}
