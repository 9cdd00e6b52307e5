package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/voxlate/voxlate/internal/config"
	"github.com/voxlate/voxlate/internal/fault"
)

// Hardcoded last-resort defaults, used when neither the request nor the
// config provides an override.
const (
	fallbackVoiceID = "21m00Tcm4TlvDq8ikWAM"
	fallbackModelID = "eleven_multilingual_v2"
	fallbackFormat  = "mp3"
)

// Voice tuning is fixed for consistency across languages, not user-tunable.
const (
	voiceStability       = 0.5
	voiceSimilarityBoost = 0.75
)

// maxStreamingLatency is the most aggressive latency-optimization tier the
// streaming API exposes. Audio-quality ceiling is traded for minimum
// time-to-first-byte.
const maxStreamingLatency = "4"

// outputFormats maps client-facing format names to upstream format codes.
var outputFormats = map[string]string{
	"mp3":  "mp3_44100_128",
	"opus": "opus_48000_64",
	"pcm":  "pcm_16000",
	"ulaw": "ulaw_8000",
}

// ElevenLabs synthesizes speech through the ElevenLabs streaming endpoint.
type ElevenLabs struct {
	cfg        config.TTSConfig
	httpClient *http.Client
}

func NewElevenLabs(cfg config.TTSConfig) *ElevenLabs {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.elevenlabs.io"
	}
	return &ElevenLabs{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

func (e *ElevenLabs) Name() string { return "elevenlabs" }

// Synthesize requests streamed audio for the given text. On success the
// response body is handed to the caller unread; the caller owns closing it.
func (e *ElevenLabs) Synthesize(ctx context.Context, req SynthesisRequest) (*Stream, error) {
	if e.cfg.ElevenLabsKey == "" {
		return nil, &fault.ServiceUnavailableError{Service: "TTS"}
	}

	voiceID := firstNonEmpty(req.VoiceID, e.cfg.DefaultVoice, fallbackVoiceID)
	modelID := firstNonEmpty(req.ModelID, e.cfg.DefaultModel, fallbackModelID)
	format := firstNonEmpty(req.OutputFormat, e.cfg.DefaultFormat, fallbackFormat)

	upstreamFormat, ok := outputFormats[strings.ToLower(format)]
	if !ok {
		format = fallbackFormat
		upstreamFormat = outputFormats[fallbackFormat]
	}

	endpoint := strings.TrimRight(e.cfg.BaseURL, "/") +
		"/v1/text-to-speech/" + url.PathEscape(voiceID) + "/stream" +
		"?optimize_streaming_latency=" + maxStreamingLatency +
		"&output_format=" + url.QueryEscape(upstreamFormat)

	payload := map[string]any{
		"text":     req.Text,
		"model_id": modelID,
		"voice_settings": map[string]any{
			"stability":        voiceStability,
			"similarity_boost": voiceSimilarityBoost,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &fault.InternalError{Err: fmt.Errorf("marshal tts payload: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &fault.InternalError{Err: fmt.Errorf("build tts request: %w", err)}
	}
	httpReq.Header.Set("xi-api-key", e.cfg.ElevenLabsKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/mpeg")

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, &fault.UpstreamError{
			Stage:   fault.StageTTS,
			Kind:    fault.KindTransport,
			Message: err.Error(),
		}
	}

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &fault.UpstreamError{
			Stage:   fault.StageTTS,
			Kind:    fault.KindForStatus(resp.StatusCode),
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(string(detail)),
		}
	}

	return &Stream{
		Audio:       resp.Body,
		ContentType: ContentTypeForFormat(format),
		Format:      format,
	}, nil
}

// Voices fetches the upstream voice catalog.
func (e *ElevenLabs) Voices(ctx context.Context) ([]Voice, error) {
	if e.cfg.ElevenLabsKey == "" {
		return nil, &fault.ServiceUnavailableError{Service: "TTS"}
	}

	endpoint := strings.TrimRight(e.cfg.BaseURL, "/") + "/v1/voices"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &fault.InternalError{Err: fmt.Errorf("build voices request: %w", err)}
	}
	httpReq.Header.Set("xi-api-key", e.cfg.ElevenLabsKey)

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, &fault.UpstreamError{
			Stage:   fault.StageTTS,
			Kind:    fault.KindTransport,
			Message: err.Error(),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &fault.UpstreamError{
			Stage:   fault.StageTTS,
			Kind:    fault.KindForStatus(resp.StatusCode),
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(string(detail)),
		}
	}

	var parsed struct {
		Voices []Voice `json:"voices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &fault.UpstreamError{
			Stage:   fault.StageTTS,
			Kind:    fault.KindUnknown,
			Status:  resp.StatusCode,
			Message: "malformed voices response: " + err.Error(),
		}
	}
	return parsed.Voices, nil
}

// ContentTypeForFormat maps a client-facing format name to the response
// Content-Type.
func ContentTypeForFormat(format string) string {
	switch strings.ToLower(format) {
	case "mp3", "":
		return "audio/mpeg"
	case "wav":
		return "audio/wav"
	case "opus":
		return "audio/ogg"
	case "pcm":
		return "audio/pcm"
	case "ulaw":
		return "audio/basic"
	default:
		return "audio/" + strings.ToLower(format)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
