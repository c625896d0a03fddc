package consumer

import (
	"context"
	"errors"
	"time"

	"fabrication-service/internal/filestatus"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Ingester is the part of the ingest service the consumer drives.
type Ingester interface {
	Ingest(ctx context.Context, payload []byte) error
}

// KafkaStatusConsumer reads worker status reports. Offsets are committed as
// messages are read, so a report that fails to apply is logged and lost;
// the next report for the file overwrites it anyway.
type KafkaStatusConsumer struct {
	reader *kafka.Reader
	ingest Ingester
	log    *zap.Logger
}

func NewKafkaStatusConsumer(brokers []string, groupID, topic string, ingest Ingester, log *zap.Logger) *KafkaStatusConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topic:             topic,
		MinBytes:          1,
		MaxBytes:          10e6,
		MaxWait:           500 * time.Millisecond,
		CommitInterval:    time.Second,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	})
	return &KafkaStatusConsumer{reader: r, ingest: ingest, log: log}
}

func (c *KafkaStatusConsumer) Run(ctx context.Context) error {
	c.log.Info("kafka status consumer started")
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			c.log.Error("read message", zap.Error(err))
			continue
		}
		c.handleMessage(ctx, m)
	}
}

func (c *KafkaStatusConsumer) handleMessage(ctx context.Context, m kafka.Message) {
	err := c.ingest.Ingest(ctx, m.Value)
	switch {
	case err == nil:
	case errors.Is(err, filestatus.ErrMalformedEvent):
		c.log.Warn("skipping malformed status report",
			zap.ByteString("value", m.Value), zap.Int64("offset", m.Offset), zap.Error(err))
	default:
		c.log.Error("apply status report failed",
			zap.ByteString("key", m.Key), zap.Int64("offset", m.Offset), zap.Error(err))
	}
}

func (c *KafkaStatusConsumer) Close() error { return c.reader.Close() }
