package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisChannel is the push channel: one pub/sub channel carrying events for
// every session. Delivery is at-most-once; subscribers that are not connected
// miss events.
type RedisChannel struct {
	rdb  *redis.Client
	name string
	log  *zap.Logger
}

func NewRedisChannel(rdb *redis.Client, name string, log *zap.Logger) *RedisChannel {
	return &RedisChannel{rdb: rdb, name: name, log: log}
}

func (c *RedisChannel) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := c.rdb.Publish(ctx, c.name, data).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", c.name, err)
	}
	return nil
}

// Listen subscribes and hands every raw payload to handle until ctx is done.
func (c *RedisChannel) Listen(ctx context.Context, handle func([]byte)) error {
	sub := c.rdb.Subscribe(ctx, c.name)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", c.name, err)
	}
	c.log.Info("subscribed to push channel", zap.String("channel", c.name))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			handle([]byte(msg.Payload))
		}
	}
}
