package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"checkout-svc/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const lockTTL = 2 * time.Minute

// RedisStore keeps sessions as JSON blobs with a TTL. A secondary key maps
// tx_ref to session id so the confirmation consumer can find sessions.
type RedisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func InitRedis(addr, password string, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established")
	return rdb, nil
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl, logger: logger}
}

func sessionKey(id string) string {
	return fmt.Sprintf("checkout:session:%s", id)
}

func txRefKey(txRef string) string {
	return fmt.Sprintf("checkout:txref:%s", txRef)
}

func lockKey(id string) string {
	return fmt.Sprintf("checkout:lock:%s", id)
}

func (s *RedisStore) Save(ctx context.Context, session *models.CheckoutSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(session.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if err := s.rdb.Set(ctx, txRefKey(session.TxRef), session.ID, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to index session by tx_ref: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.CheckoutSession, error) {
	data, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session models.CheckoutSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

func (s *RedisStore) GetByTxRef(ctx context.Context, txRef string) (*models.CheckoutSession, error) {
	id, err := s.rdb.Get(ctx, txRefKey(txRef)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve tx_ref: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *RedisStore) AcquireLock(ctx context.Context, id string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, lockKey(id), "1", lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire submission lock: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) ReleaseLock(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, lockKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to release submission lock: %w", err)
	}
	return nil
}
