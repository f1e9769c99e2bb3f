package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cerbyl-session-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ConfigStore implements app.ConfigRepository on Redis. The single-use
// contract maps onto GETDEL: the configuration disappears the moment the
// loader reads it, even across service instances.
type ConfigStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewConfigStore(client *redis.Client, ttl time.Duration) *ConfigStore {
	return &ConfigStore{client: client, ttl: ttl}
}

func (s *ConfigStore) Put(ctx context.Context, userID string, cfg domain.QuizConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return s.client.Set(ctx, s.key(userID), data, s.ttl).Err()
}

func (s *ConfigStore) Take(ctx context.Context, userID string) (domain.QuizConfig, error) {
	raw, err := s.client.GetDel(ctx, s.key(userID)).Bytes()
	if err == redis.Nil {
		return domain.QuizConfig{}, domain.ErrNoConfiguration
	}
	if err != nil {
		return domain.QuizConfig{}, fmt.Errorf("take config: %w", err)
	}
	var cfg domain.QuizConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return domain.QuizConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func (s *ConfigStore) key(userID string) string {
	return "session:config:" + userID
}
