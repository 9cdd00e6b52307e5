// Package history persists per-request usage records for metering and
// diagnostics. Writes happen on the worker, never on the request path.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Record is one pipeline run as stored.
type Record struct {
	ID             uuid.UUID
	UserID         string
	SourceLanguage string
	TargetLanguage string
	SourceChars    int
	TargetChars    int
	STTMs          int64
	TranslationMs  int64
	TTSMs          int64
	TotalMs        int64
	Outcome        string
	FailureStage   string
	CreatedAt      time.Time
}

func (s *Store) Insert(ctx context.Context, rec Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO ptt_usage (id, user_id, source_language, target_language, source_chars, target_chars,
		                        stt_ms, translation_ms, tts_ms, total_ms, outcome, failure_stage)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rec.ID, nullable(rec.UserID), rec.SourceLanguage, rec.TargetLanguage, rec.SourceChars, rec.TargetChars,
		rec.STTMs, rec.TranslationMs, rec.TTSMs, rec.TotalMs, rec.Outcome, nullable(rec.FailureStage),
	)
	if err != nil {
		return fmt.Errorf("insert usage record: %w", err)
	}
	return nil
}

// UsageSummary aggregates usage per language pair.
type UsageSummary struct {
	SourceLanguage string  `json:"source_language"`
	TargetLanguage string  `json:"target_language"`
	TotalCalls     int     `json:"total_calls"`
	Failures       int     `json:"failures"`
	AvgTotalMs     float64 `json:"avg_total_ms"`
}

func (s *Store) Summary(ctx context.Context, since *time.Time) ([]UsageSummary, error) {
	query := `SELECT source_language, target_language, COUNT(*),
	                 COUNT(*) FILTER (WHERE outcome <> 'ok'),
	                 COALESCE(AVG(total_ms), 0)
	          FROM ptt_usage`
	args := []interface{}{}
	if since != nil {
		query += ` WHERE created_at >= $1`
		args = append(args, *since)
	}
	query += ` GROUP BY source_language, target_language ORDER BY COUNT(*) DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query usage summary: %w", err)
	}
	defer rows.Close()

	var summaries []UsageSummary
	for rows.Next() {
		var us UsageSummary
		if err := rows.Scan(&us.SourceLanguage, &us.TargetLanguage, &us.TotalCalls, &us.Failures, &us.AvgTotalMs); err != nil {
			return nil, fmt.Errorf("scan usage summary: %w", err)
		}
		summaries = append(summaries, us)
	}
	return summaries, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
