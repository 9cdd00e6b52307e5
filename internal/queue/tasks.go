package queue

const TypeUsageRecord = "usage:record"

// UsageRecordPayload describes one completed pipeline run, successful or not.
// Enqueued by the API after the response is sent and written to Postgres by
// the worker.
type UsageRecordPayload struct {
	RequestID      string `json:"request_id"`
	UserID         string `json:"user_id,omitempty"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	SourceChars    int    `json:"source_chars"`
	TargetChars    int    `json:"target_chars"`
	STTMs          int64  `json:"stt_ms"`
	TranslationMs  int64  `json:"translation_ms"`
	TTSMs          int64  `json:"tts_ms"`
	TotalMs        int64  `json:"total_ms"`
	Outcome        string `json:"outcome"` // "ok" or "error"
	FailureStage   string `json:"failure_stage,omitempty"`
}
