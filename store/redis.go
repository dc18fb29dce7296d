package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"Bt1QRadio/config"
	"Bt1QRadio/logger"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on a redis instance. Documents are stored as
// JSON strings without expiry; the appliance state must survive restarts.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to redis and verifies the connection.
func NewRedisStore(cfg *config.Config) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// backupKey names the pre-overwrite copy of a document.
func backupKey(key string) string {
	return key + ":bak"
}

// Get unmarshals the document at key into v.
func (s *RedisStore) Get(ctx context.Context, key string, v interface{}) error {
	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get document %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("failed to unmarshal document %s: %w", key, err)
	}
	return nil
}

// Set stores v at key, backing up the previous document first. When the
// write fails the backup is restored so a half-finished overwrite never
// loses the old state.
func (s *RedisStore) Set(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal document %s: %w", key, err)
	}

	prev, err := s.client.Get(ctx, key).Result()
	hadPrev := err == nil
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to read document %s before overwrite: %w", key, err)
	}
	if hadPrev {
		if err := s.client.Set(ctx, backupKey(key), prev, 0).Err(); err != nil {
			return fmt.Errorf("failed to back up document %s: %w", key, err)
		}
	}

	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		if hadPrev {
			if restoreErr := s.client.Set(ctx, key, prev, 0).Err(); restoreErr != nil {
				logger.Error("failed to restore document after write failure",
					logger.String("key", key),
					logger.ErrorField(restoreErr))
			}
		}
		return fmt.Errorf("failed to set document %s: %w", key, err)
	}
	return nil
}

// Delete removes the document and its backup.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key, backupKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete document %s: %w", key, err)
	}
	return nil
}

// Close closes the redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Check performs a write/read/delete round-trip, used by the store
// subcommand to verify connectivity.
func (s *RedisStore) Check(ctx context.Context) error {
	const key = "radio:selftest"

	if err := s.client.Set(ctx, key, "ok", 5*time.Minute).Err(); err != nil {
		return fmt.Errorf("failed to set check key: %w", err)
	}

	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to get check key: %w", err)
	}
	if val != "ok" {
		return fmt.Errorf("unexpected value from check key: got %s", val)
	}

	if _, err := s.client.Del(ctx, key).Result(); err != nil {
		return fmt.Errorf("failed to delete check key: %w", err)
	}
	return nil
}
