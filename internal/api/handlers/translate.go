package handlers

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/voxlate/voxlate/internal/auth"
	"github.com/voxlate/voxlate/internal/fault"
	"github.com/voxlate/voxlate/internal/pipeline"
	"github.com/voxlate/voxlate/internal/queue"
)

const missingFieldsMsg = "Audio data, source language, and target language are required"

// pttRequest is the wire shape of a push-to-talk request.
type pttRequest struct {
	Audio          string `json:"audio"`
	AudioFormat    string `json:"audioFormat,omitempty"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
	VoiceID        string `json:"voiceId,omitempty"`
	ModelID        string `json:"modelId,omitempty"`
}

// TranslateHandler serves the push-to-talk pipeline endpoint.
type TranslateHandler struct {
	pipeline *pipeline.Pipeline
	queue    *queue.Client // nil when no queue is configured
}

func NewTranslateHandler(p *pipeline.Pipeline, q *queue.Client) *TranslateHandler {
	return &TranslateHandler{pipeline: p, queue: q}
}

// PushToTalk runs the transcribe → translate → synthesize chain and streams
// the synthesized audio back with latency and transcript headers.
func (h *TranslateHandler) PushToTalk(w http.ResponseWriter, r *http.Request) {
	req, err := parsePTTRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, runErr := h.pipeline.Run(r.Context(), *req)
	h.recordUsage(r, req, result, runErr)

	if runErr != nil {
		writeError(w, runErr)
		return
	}

	stream := result.Audio
	defer stream.Audio.Close()

	w.Header().Set("Content-Type", stream.ContentType)
	w.Header().Set("X-STT-Latency", strconv.FormatInt(result.Latencies.STT, 10))
	w.Header().Set("X-Translation-Latency", strconv.FormatInt(result.Latencies.Translation, 10))
	w.Header().Set("X-TTS-Latency", strconv.FormatInt(result.Latencies.TTS, 10))
	w.Header().Set("X-Total-Latency", strconv.FormatInt(result.Latencies.Total, 10))
	w.Header().Set("X-Source-Text", base64.StdEncoding.EncodeToString([]byte(result.SourceText)))
	w.Header().Set("X-Target-Text", base64.StdEncoding.EncodeToString([]byte(result.TargetText)))
	w.WriteHeader(http.StatusOK)

	forwardStream(w, stream.Audio)
}

// parsePTTRequest is the validator stage: pure parse and check, no side
// effects, rejected before any external call.
func parsePTTRequest(r *http.Request) (*pipeline.Request, error) {
	var body pttRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, &fault.ValidationError{Msg: "Invalid request body"}
	}

	if body.Audio == "" || strings.TrimSpace(body.SourceLanguage) == "" || strings.TrimSpace(body.TargetLanguage) == "" {
		return nil, &fault.ValidationError{Msg: missingFieldsMsg}
	}

	audio, err := decodeAudio(body.Audio)
	if err != nil {
		return nil, &fault.ValidationError{Msg: "Invalid audio encoding"}
	}
	if len(audio) == 0 {
		return nil, &fault.ValidationError{Msg: missingFieldsMsg}
	}

	return &pipeline.Request{
		Audio:          audio,
		AudioFormat:    strings.ToLower(strings.TrimSpace(body.AudioFormat)),
		SourceLanguage: strings.TrimSpace(body.SourceLanguage),
		TargetLanguage: strings.TrimSpace(body.TargetLanguage),
		VoiceID:        strings.TrimSpace(body.VoiceID),
		ModelID:        strings.TrimSpace(body.ModelID),
	}, nil
}

// decodeAudio accepts plain base64 or a browser data URL.
func decodeAudio(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		if idx := strings.Index(s, "base64,"); idx >= 0 {
			s = s[idx+len("base64,"):]
		}
	}
	return base64.StdEncoding.DecodeString(s)
}

// forwardStream copies synthesized audio to the client as it arrives from
// upstream, flushing per chunk to keep time-to-first-byte low.
func forwardStream(w http.ResponseWriter, audio io.Reader) {
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 32*1024)
	for {
		n, err := audio.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err != nil {
			if err != io.EOF {
				slog.Warn("tts stream interrupted", "error", err)
			}
			return
		}
	}
}

func (h *TranslateHandler) recordUsage(r *http.Request, req *pipeline.Request, result *pipeline.Result, runErr error) {
	if h.queue == nil {
		return
	}

	payload := queue.UsageRecordPayload{
		RequestID:      uuid.New().String(),
		UserID:         auth.UserIDFromContext(r.Context()),
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
		Outcome:        "ok",
	}
	if result != nil {
		payload.SourceChars = len(result.SourceText)
		payload.TargetChars = len(result.TargetText)
		payload.STTMs = result.Latencies.STT
		payload.TranslationMs = result.Latencies.Translation
		payload.TTSMs = result.Latencies.TTS
		payload.TotalMs = result.Latencies.Total
	}
	if runErr != nil {
		payload.Outcome = "error"
		payload.FailureStage = failureStage(runErr)
	}

	go func() {
		if err := h.queue.EnqueueUsageRecord(payload); err != nil {
			slog.Warn("usage record enqueue failed", "error", err)
		}
	}()
}

func failureStage(err error) string {
	switch e := err.(type) {
	case *fault.UpstreamError:
		return string(e.Stage)
	case *fault.ContentError:
		return string(e.Stage)
	case *fault.ServiceUnavailableError:
		return strings.ToLower(e.Service)
	case *fault.ValidationError:
		return string(fault.StageValidation)
	default:
		return "internal"
	}
}
