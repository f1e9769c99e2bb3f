package memory

import (
	"context"
	"sync"

	"cerbyl-session-service/internal/domain"
)

// ResultArchive keeps completed session records in memory. Used when no
// database is configured and as the archive double in tests.
type ResultArchive struct {
	mu      sync.Mutex
	records []domain.SessionRecord
}

func NewResultArchive() *ResultArchive {
	return &ResultArchive{}
}

func (a *ResultArchive) Save(_ context.Context, rec domain.SessionRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, rec)
	return nil
}

// Records returns a copy of everything saved so far.
func (a *ResultArchive) Records() []domain.SessionRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.SessionRecord, len(a.records))
	copy(out, a.records)
	return out
}
