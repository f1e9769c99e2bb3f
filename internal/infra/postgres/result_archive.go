package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"cerbyl-session-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ResultArchive persists completed session records to Postgres.
type ResultArchive struct {
	pool *pgxpool.Pool
}

func NewResultArchive(pool *pgxpool.Pool) *ResultArchive {
	return &ResultArchive{pool: pool}
}

func (a *ResultArchive) Save(ctx context.Context, rec domain.SessionRecord) error {
	data, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	_, err = a.pool.Exec(ctx, `
		INSERT INTO session_results
			(user_id, topic, mode, timing, total_questions, correct_count, percentage, elapsed_seconds, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10)`,
		rec.UserID, rec.Topic, string(rec.Mode), string(rec.Timing),
		rec.TotalQuestions, rec.CorrectCount, rec.Percentage, rec.ElapsedSeconds,
		string(data), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save session result: %w", err)
	}
	return nil
}
