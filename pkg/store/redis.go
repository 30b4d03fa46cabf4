package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Payphone-Digital/midas/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore keeps each document as a JSON string under {prefix}{collection}:{key}.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewRedisStore(ctx context.Context, cfg config.RedisConfig, address, prefix string, logger *zap.Logger) (*RedisStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         address,
		Password:     cfg.Password,
		DB:           cfg.Database,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	s := &RedisStore{rdb: rdb, prefix: prefix}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.Ping(pingCtx); err != nil {
		logger.Error("Failed to connect to Redis",
			zap.String("address", address),
			zap.Error(err),
		)
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Successfully connected to Redis",
		zap.String("address", address),
		zap.Int("database", cfg.Database),
	)

	return s, nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(rdb redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(collection, key string) string {
	return s.prefix + collection + ":" + key
}

func (s *RedisStore) Create(ctx context.Context, collection, key string, v any) error {
	if err := ValidateKey(collection, key); err != nil {
		return wrap("create", collection, key, err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return wrap("create", collection, key, err)
	}

	ok, err := s.rdb.SetNX(ctx, s.key(collection, key), data, 0).Result()
	if err != nil {
		return wrap("create", collection, key, err)
	}
	if !ok {
		return wrap("create", collection, key, ErrExists)
	}
	return nil
}

func (s *RedisStore) Read(ctx context.Context, collection, key string, out any) error {
	if err := ValidateKey(collection, key); err != nil {
		return wrap("read", collection, key, err)
	}

	data, err := s.rdb.Get(ctx, s.key(collection, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return wrap("read", collection, key, ErrNotFound)
		}
		return wrap("read", collection, key, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return wrap("read", collection, key, err)
	}
	return nil
}

func (s *RedisStore) Update(ctx context.Context, collection, key string, v any) error {
	if err := ValidateKey(collection, key); err != nil {
		return wrap("update", collection, key, err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return wrap("update", collection, key, err)
	}

	ok, err := s.rdb.SetXX(ctx, s.key(collection, key), data, redis.KeepTTL).Result()
	if err != nil {
		return wrap("update", collection, key, err)
	}
	if !ok {
		return wrap("update", collection, key, ErrNotFound)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, collection, key string) error {
	if err := ValidateKey(collection, key); err != nil {
		return wrap("delete", collection, key, err)
	}

	n, err := s.rdb.Del(ctx, s.key(collection, key)).Result()
	if err != nil {
		return wrap("delete", collection, key, err)
	}
	if n == 0 {
		return wrap("delete", collection, key, ErrNotFound)
	}
	return nil
}

func (s *RedisStore) Exists(ctx context.Context, collection, key string) (bool, error) {
	if err := ValidateKey(collection, key); err != nil {
		return false, wrap("exists", collection, key, err)
	}

	n, err := s.rdb.Exists(ctx, s.key(collection, key)).Result()
	if err != nil {
		return false, wrap("exists", collection, key, err)
	}
	return n > 0, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
