package memory

import (
	"context"
	"sync"

	"cerbyl-session-service/internal/domain"
)

// ConfigStore is the in-memory implementation of app.ConfigRepository: one
// pending configuration per user, consumed on read.
type ConfigStore struct {
	mu      sync.Mutex
	pending map[string]domain.QuizConfig
}

func NewConfigStore() *ConfigStore {
	return &ConfigStore{pending: make(map[string]domain.QuizConfig)}
}

func (s *ConfigStore) Put(_ context.Context, userID string, cfg domain.QuizConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[userID] = cfg
	return nil
}

// Take returns the pending configuration and deletes it in the same step, so
// a second Take without a new Put fails the loader's precondition.
func (s *ConfigStore) Take(_ context.Context, userID string) (domain.QuizConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.pending[userID]
	if !ok {
		return domain.QuizConfig{}, domain.ErrNoConfiguration
	}
	delete(s.pending, userID)
	return cfg, nil
}
