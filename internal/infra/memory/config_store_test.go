package memory

import (
	"context"
	"testing"

	"cerbyl-session-service/internal/domain"
)

func TestConfigStoreTakeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	store := NewConfigStore()

	cfg := domain.QuizConfig{
		Questions: []domain.Question{{ID: "q1", Answer: "A"}},
		Mode:      domain.ModeStandard,
	}
	if err := store.Put(ctx, "u1", cfg); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Take(ctx, "u1")
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	if len(got.Questions) != 1 || got.Mode != domain.ModeStandard {
		t.Fatalf("unexpected config: %+v", got)
	}

	if _, err := store.Take(ctx, "u1"); err != domain.ErrNoConfiguration {
		t.Fatalf("second take must fail, got %v", err)
	}
}

func TestConfigStoreMissingUser(t *testing.T) {
	store := NewConfigStore()
	if _, err := store.Take(context.Background(), "ghost"); err != domain.ErrNoConfiguration {
		t.Fatalf("expected ErrNoConfiguration, got %v", err)
	}
}
