package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/voxlate/voxlate/internal/history"
	"github.com/voxlate/voxlate/internal/queue"
)

// UsageWorker writes usage-record tasks to Postgres.
type UsageWorker struct {
	store *history.Store
}

func NewUsageWorker(store *history.Store) *UsageWorker {
	return &UsageWorker{store: store}
}

func (w *UsageWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.UsageRecordPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal usage payload: %w", err)
	}

	id, err := uuid.Parse(payload.RequestID)
	if err != nil {
		id = uuid.New()
	}

	rec := history.Record{
		ID:             id,
		UserID:         payload.UserID,
		SourceLanguage: payload.SourceLanguage,
		TargetLanguage: payload.TargetLanguage,
		SourceChars:    payload.SourceChars,
		TargetChars:    payload.TargetChars,
		STTMs:          payload.STTMs,
		TranslationMs:  payload.TranslationMs,
		TTSMs:          payload.TTSMs,
		TotalMs:        payload.TotalMs,
		Outcome:        payload.Outcome,
		FailureStage:   payload.FailureStage,
	}

	if err := w.store.Insert(ctx, rec); err != nil {
		return err
	}

	slog.Debug("usage record stored",
		"request_id", rec.ID,
		"pair", rec.SourceLanguage+"->"+rec.TargetLanguage,
		"outcome", rec.Outcome,
	)
	return nil
}
