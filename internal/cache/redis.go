package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrCacheMiss = errors.New("cache miss")

type RedisClient struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisClient(addr, password string, db int, log *zap.Logger) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Redis connected successfully", zap.String("addr", addr))

	return &RedisClient{
		client: rdb,
		log:    log,
	}, nil
}

// Client exposes the underlying connection for pub/sub.
func (r *RedisClient) Client() *redis.Client {
	return r.client
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

// Checkout results, keyed by session and idempotency key.
func checkoutKey(sessionID, idemKey string) string {
	return fmt.Sprintf("checkout:result:%s:%s", sessionID, idemKey)
}

func (r *RedisClient) SetCheckoutResult(ctx context.Context, sessionID, idemKey string, data []byte, ttl time.Duration) error {
	return r.client.Set(ctx, checkoutKey(sessionID, idemKey), data, ttl).Err()
}

func (r *RedisClient) GetCheckoutResult(ctx context.Context, sessionID, idemKey string) ([]byte, error) {
	b, err := r.client.Get(ctx, checkoutKey(sessionID, idemKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return b, err
}

// Per-session checkout lock
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func lockKey(sessionID string) string {
	return fmt.Sprintf("checkout:lock:%s", sessionID)
}

// AcquireCheckoutLock takes the session's checkout lock. ok is false when
// another attempt holds it. The returned release func only deletes the lock
// if it is still ours.
func (r *RedisClient) AcquireCheckoutLock(ctx context.Context, sessionID string, ttl time.Duration) (release func(), ok bool, err error) {
	token := uuid.NewString()
	key := lockKey(sessionID)

	ok, err = r.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !ok {
		return func() {}, ok, err
	}

	release = func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, r.client, []string{key}, token).Err(); err != nil {
			r.log.Warn("failed to release checkout lock", zap.String("session_id", sessionID), zap.Error(err))
		}
	}
	return release, true, nil
}
