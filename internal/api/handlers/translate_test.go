package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/voxlate/voxlate/internal/fault"
	"github.com/voxlate/voxlate/internal/pipeline"
	"github.com/voxlate/voxlate/internal/stt"
	"github.com/voxlate/voxlate/internal/translate"
	"github.com/voxlate/voxlate/internal/tts"
)

type stubSTT struct {
	text string
	err  error
}

func (s *stubSTT) Transcribe(context.Context, stt.TranscriptionRequest) (*stt.TranscriptionResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &stt.TranscriptionResponse{Text: s.text}, nil
}

func (s *stubSTT) Name() string { return "stub" }

type stubTranslator struct {
	text string
	err  error
}

func (s *stubTranslator) Translate(context.Context, translate.Request) (*translate.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &translate.Response{Text: s.text}, nil
}

type stubTTS struct {
	audio string
	err   error
}

func (s *stubTTS) Synthesize(context.Context, tts.SynthesisRequest) (*tts.Stream, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &tts.Stream{
		Audio:       io.NopCloser(strings.NewReader(s.audio)),
		ContentType: "audio/mpeg",
		Format:      "mp3",
	}, nil
}

func (s *stubTTS) Name() string { return "stub" }

func newHandler(s *stubSTT, tr *stubTranslator, ts *stubTTS) *TranslateHandler {
	p := pipeline.New(s, tr, ts, nil)
	return NewTranslateHandler(p, nil)
}

func postPTT(t *testing.T, h *TranslateHandler, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/translate/ptt", &buf)
	rec := httptest.NewRecorder()
	h.PushToTalk(rec, req)
	return rec
}

func validBody() map[string]string {
	return map[string]string{
		"audio":          base64.StdEncoding.EncodeToString([]byte("fake-audio")),
		"sourceLanguage": "en",
		"targetLanguage": "es",
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rec.Body.String())
	}
	return body
}

func TestPushToTalkSuccess(t *testing.T) {
	h := newHandler(&stubSTT{text: "hello"}, &stubTranslator{text: "hola"}, &stubTTS{audio: "mp3-data"})

	rec := postPTT(t, h, validBody())

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("content type = %q", ct)
	}
	if rec.Body.String() != "mp3-data" {
		t.Errorf("body = %q", rec.Body.String())
	}

	for _, header := range []string{"X-STT-Latency", "X-Translation-Latency", "X-TTS-Latency", "X-Total-Latency"} {
		raw := rec.Header().Get(header)
		ms, err := strconv.Atoi(raw)
		if err != nil || ms < 0 {
			t.Errorf("%s = %q, want non-negative integer", header, raw)
		}
	}

	src, err := base64.StdEncoding.DecodeString(rec.Header().Get("X-Source-Text"))
	if err != nil || string(src) != "hello" {
		t.Errorf("X-Source-Text decodes to %q (err %v)", src, err)
	}
	dst, err := base64.StdEncoding.DecodeString(rec.Header().Get("X-Target-Text"))
	if err != nil || string(dst) != "hola" {
		t.Errorf("X-Target-Text decodes to %q (err %v)", dst, err)
	}
}

func TestPushToTalkReplayYieldsSameTextHeaders(t *testing.T) {
	h := newHandler(&stubSTT{text: "same text"}, &stubTranslator{text: "mismo texto"}, &stubTTS{audio: "a"})

	first := postPTT(t, h, validBody())
	second := postPTT(t, h, validBody())

	if first.Header().Get("X-Source-Text") != second.Header().Get("X-Source-Text") {
		t.Error("X-Source-Text differs across identical requests")
	}
	if first.Header().Get("X-Target-Text") != second.Header().Get("X-Target-Text") {
		t.Error("X-Target-Text differs across identical requests")
	}
}

func TestPushToTalkMissingFields(t *testing.T) {
	h := newHandler(&stubSTT{text: "x"}, &stubTranslator{text: "x"}, &stubTTS{audio: "x"})

	cases := []map[string]string{
		{"sourceLanguage": "en", "targetLanguage": "es"},
		{"audio": "aGk=", "targetLanguage": "es"},
		{"audio": "aGk=", "sourceLanguage": "en"},
	}
	for i, body := range cases {
		rec := postPTT(t, h, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("case %d: status = %d", i, rec.Code)
		}
		if got := decodeError(t, rec).Error; got != missingFieldsMsg {
			t.Errorf("case %d: error = %q", i, got)
		}
	}
}

func TestPushToTalkMalformedBody(t *testing.T) {
	h := newHandler(&stubSTT{text: "x"}, &stubTranslator{text: "x"}, &stubTTS{audio: "x"})

	rec := postPTT(t, h, "{not json")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeError(t, rec).Error; got != "Invalid request body" {
		t.Errorf("error = %q", got)
	}
}

func TestPushToTalkInvalidBase64(t *testing.T) {
	h := newHandler(&stubSTT{text: "x"}, &stubTranslator{text: "x"}, &stubTTS{audio: "x"})

	body := validBody()
	body["audio"] = "!!not-base64!!"
	rec := postPTT(t, h, body)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeError(t, rec).Error; got != "Invalid audio encoding" {
		t.Errorf("error = %q", got)
	}
}

func TestPushToTalkDataURLAudio(t *testing.T) {
	h := newHandler(&stubSTT{text: "x"}, &stubTranslator{text: "y"}, &stubTTS{audio: "z"})

	body := validBody()
	body["audio"] = "data:audio/webm;base64," + base64.StdEncoding.EncodeToString([]byte("clip"))
	rec := postPTT(t, h, body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestPushToTalkSTTNotConfigured(t *testing.T) {
	h := newHandler(&stubSTT{err: &fault.ServiceUnavailableError{Service: "STT"}}, &stubTranslator{}, &stubTTS{})

	rec := postPTT(t, h, validBody())

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeError(t, rec).Error; got != "STT service not configured" {
		t.Errorf("error = %q", got)
	}
}

func TestPushToTalkTTSNotConfigured(t *testing.T) {
	h := newHandler(&stubSTT{text: "hi"}, &stubTranslator{text: "ciao"}, &stubTTS{err: &fault.ServiceUnavailableError{Service: "TTS"}})

	rec := postPTT(t, h, validBody())

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeError(t, rec).Error; got != "TTS service not configured" {
		t.Errorf("error = %q", got)
	}
}

func TestPushToTalkNoSpeechDetected(t *testing.T) {
	h := newHandler(&stubSTT{text: ""}, &stubTranslator{}, &stubTTS{})

	rec := postPTT(t, h, validBody())

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeError(t, rec).Error; got != "No speech detected in audio" {
		t.Errorf("error = %q", got)
	}
}

func TestPushToTalkEmptyTranslation(t *testing.T) {
	h := newHandler(
		&stubSTT{text: "hi"},
		&stubTranslator{err: &fault.ContentError{Stage: fault.StageTranslation, Msg: "Translation failed"}},
		&stubTTS{},
	)

	rec := postPTT(t, h, validBody())

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeError(t, rec).Error; got != "Translation failed" {
		t.Errorf("error = %q", got)
	}
}

func TestPushToTalkTTSRateLimitPassThrough(t *testing.T) {
	h := newHandler(
		&stubSTT{text: "hi"},
		&stubTranslator{text: "ciao"},
		&stubTTS{err: &fault.UpstreamError{Stage: fault.StageTTS, Kind: fault.KindRateLimit, Status: 429, Message: "slow down"}},
	)

	rec := postPTT(t, h, validBody())

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Error != "TTS generation failed" {
		t.Errorf("error = %q", body.Error)
	}
}

func TestPushToTalkSTTRateLimit(t *testing.T) {
	h := newHandler(
		&stubSTT{err: &fault.UpstreamError{Stage: fault.StageSTT, Kind: fault.KindRateLimit, Status: 429, Message: "OpenAI API rate limit exceeded"}},
		&stubTranslator{},
		&stubTTS{},
	)

	rec := postPTT(t, h, validBody())

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Error != "Rate limit exceeded" {
		t.Errorf("error = %q", body.Error)
	}
	if !strings.Contains(body.Details, "OpenAI API rate limit exceeded") {
		t.Errorf("details = %q, want original upstream message", body.Details)
	}
}
