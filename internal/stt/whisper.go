package stt

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/voxlate/voxlate/internal/config"
	"github.com/voxlate/voxlate/internal/fault"
	"github.com/voxlate/voxlate/internal/language"
)

// transcribeTemperature is fixed low to favor consistent transcripts over
// creative ones. It is a policy choice, not a caller-visible tunable.
const transcribeTemperature = 0.0

// Whisper transcribes audio through OpenAI's Whisper API or a compatible
// endpoint.
type Whisper struct {
	cfg    config.STTConfig
	client *openai.Client
}

// NewWhisper builds the adapter. A missing API key is allowed here; it is
// reported per request so the server can start partially configured.
func NewWhisper(cfg config.STTConfig) *Whisper {
	if cfg.Model == "" {
		cfg.Model = "whisper-1"
	}

	clientCfg := openai.DefaultConfig(cfg.OpenAIKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}

	return &Whisper{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientCfg),
	}
}

func (w *Whisper) Name() string { return "openai-whisper" }

// Transcribe sends the audio clip to the transcription endpoint. When the
// request language is "auto" the hint is omitted entirely; the literal string
// must never reach the upstream API.
func (w *Whisper) Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error) {
	if w.cfg.OpenAIKey == "" {
		return nil, &fault.ServiceUnavailableError{Service: "STT"}
	}

	format := req.Format
	if format == "" {
		format = "webm"
	}

	audioReq := openai.AudioRequest{
		Model:       w.cfg.Model,
		Reader:      bytes.NewReader(req.Audio),
		FilePath:    "clip." + format,
		Temperature: transcribeTemperature,
		Format:      openai.AudioResponseFormatVerboseJSON,
	}
	if hint := strings.TrimSpace(req.Language); hint != "" && !strings.EqualFold(hint, language.Auto) {
		audioReq.Language = hint
	}

	resp, err := w.client.CreateTranscription(ctx, audioReq)
	if err != nil {
		return nil, classify(err)
	}

	return &TranscriptionResponse{
		Text:     strings.TrimSpace(resp.Text),
		Language: resp.Language,
	}, nil
}

func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &fault.UpstreamError{
			Stage:   fault.StageSTT,
			Kind:    fault.KindForStatus(apiErr.HTTPStatusCode),
			Status:  apiErr.HTTPStatusCode,
			Message: apiErr.Message,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &fault.UpstreamError{
			Stage:   fault.StageSTT,
			Kind:    fault.KindForStatus(reqErr.HTTPStatusCode),
			Status:  reqErr.HTTPStatusCode,
			Message: reqErr.Error(),
		}
	}

	return &fault.UpstreamError{
		Stage:   fault.StageSTT,
		Kind:    fault.KindTransport,
		Message: err.Error(),
	}
}
