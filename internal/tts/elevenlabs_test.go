package tts

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/voxlate/voxlate/internal/config"
	"github.com/voxlate/voxlate/internal/fault"
)

func newTestElevenLabs(t *testing.T, handler http.HandlerFunc) *ElevenLabs {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	return NewElevenLabs(config.TTSConfig{
		ElevenLabsKey: "test-key",
		BaseURL:       ts.URL,
		DefaultFormat: "mp3",
	})
}

func TestSynthesizeStreamsAudio(t *testing.T) {
	var gotPath, gotKey, gotLatency string
	var gotBody map[string]any
	e := newTestElevenLabs(t, func(rw http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		gotLatency = r.URL.Query().Get("optimize_streaming_latency")
		json.NewDecoder(r.Body).Decode(&gotBody)
		rw.Header().Set("Content-Type", "audio/mpeg")
		rw.Write([]byte("fake-mp3-bytes"))
	})

	stream, err := e.Synthesize(context.Background(), SynthesisRequest{
		Text:    "Hola mundo",
		VoiceID: "voice-1",
		ModelID: "model-1",
	})
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	defer stream.Audio.Close()

	if gotPath != "/v1/text-to-speech/voice-1/stream" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("xi-api-key = %q", gotKey)
	}
	if gotLatency != "4" {
		t.Errorf("optimize_streaming_latency = %q, want 4", gotLatency)
	}
	if gotBody["text"] != "Hola mundo" || gotBody["model_id"] != "model-1" {
		t.Errorf("request body = %+v", gotBody)
	}
	settings, _ := gotBody["voice_settings"].(map[string]any)
	if settings == nil || settings["stability"] != 0.5 || settings["similarity_boost"] != 0.75 {
		t.Errorf("voice_settings = %+v", settings)
	}

	audio, err := io.ReadAll(stream.Audio)
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}
	if string(audio) != "fake-mp3-bytes" {
		t.Errorf("audio = %q", audio)
	}
	if stream.ContentType != "audio/mpeg" {
		t.Errorf("content type = %q", stream.ContentType)
	}
}

func TestSynthesizeDefaultResolution(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		rw.Write([]byte("x"))
	}))
	defer ts.Close()

	e := NewElevenLabs(config.TTSConfig{
		ElevenLabsKey: "k",
		BaseURL:       ts.URL,
		DefaultVoice:  "cfg-voice",
		DefaultModel:  "cfg-model",
	})

	stream, err := e.Synthesize(context.Background(), SynthesisRequest{Text: "hi"})
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	stream.Audio.Close()

	if !strings.Contains(gotPath, "cfg-voice") {
		t.Errorf("path = %q, want config default voice", gotPath)
	}
	if gotBody["model_id"] != "cfg-model" {
		t.Errorf("model_id = %v, want config default", gotBody["model_id"])
	}
}

func TestSynthesizeHardcodedFallbacks(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		rw.Write([]byte("x"))
	}))
	defer ts.Close()

	e := NewElevenLabs(config.TTSConfig{ElevenLabsKey: "k", BaseURL: ts.URL})
	stream, err := e.Synthesize(context.Background(), SynthesisRequest{Text: "hi"})
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	stream.Audio.Close()

	if !strings.Contains(gotPath, fallbackVoiceID) {
		t.Errorf("path = %q, want fallback voice", gotPath)
	}
	if gotBody["model_id"] != fallbackModelID {
		t.Errorf("model_id = %v, want fallback model", gotBody["model_id"])
	}
	if stream.Format != "mp3" {
		t.Errorf("format = %q, want mp3", stream.Format)
	}
}

func TestSynthesizeMissingCredential(t *testing.T) {
	e := NewElevenLabs(config.TTSConfig{})

	_, err := e.Synthesize(context.Background(), SynthesisRequest{Text: "hi"})

	var sErr *fault.ServiceUnavailableError
	if !errors.As(err, &sErr) {
		t.Fatalf("error = %v, want ServiceUnavailableError", err)
	}
	if sErr.Error() != "TTS service not configured" {
		t.Errorf("message = %q", sErr.Error())
	}
}

func TestSynthesizeUpstreamStatusPassThrough(t *testing.T) {
	cases := []struct {
		status   int
		wantKind fault.Kind
	}{
		{http.StatusUnauthorized, fault.KindInvalidKey},
		{http.StatusTooManyRequests, fault.KindRateLimit},
		{http.StatusBadRequest, fault.KindBadInput},
		{http.StatusBadGateway, fault.KindUnknown},
	}

	for _, c := range cases {
		e := newTestElevenLabs(t, func(rw http.ResponseWriter, r *http.Request) {
			rw.WriteHeader(c.status)
			rw.Write([]byte(`{"detail":"upstream says no"}`))
		})

		_, err := e.Synthesize(context.Background(), SynthesisRequest{Text: "hi"})

		var uErr *fault.UpstreamError
		if !errors.As(err, &uErr) {
			t.Fatalf("status %d: error = %v, want UpstreamError", c.status, err)
		}
		if uErr.Status != c.status || uErr.Kind != c.wantKind || uErr.Stage != fault.StageTTS {
			t.Errorf("status %d: upstream error = %+v", c.status, uErr)
		}
		if !strings.Contains(uErr.Message, "upstream says no") {
			t.Errorf("status %d: message %q should carry upstream detail", c.status, uErr.Message)
		}
	}
}

func TestVoices(t *testing.T) {
	e := newTestElevenLabs(t, func(rw http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/voices" {
			t.Errorf("path = %q", r.URL.Path)
		}
		rw.Header().Set("Content-Type", "application/json")
		rw.Write([]byte(`{"voices":[{"voice_id":"v1","name":"Rachel","category":"premade"}]}`))
	})

	voices, err := e.Voices(context.Background())
	if err != nil {
		t.Fatalf("Voices() error = %v", err)
	}
	if len(voices) != 1 || voices[0].ID != "v1" || voices[0].Name != "Rachel" {
		t.Errorf("voices = %+v", voices)
	}
}

func TestContentTypeForFormat(t *testing.T) {
	cases := map[string]string{
		"mp3":  "audio/mpeg",
		"":     "audio/mpeg",
		"wav":  "audio/wav",
		"opus": "audio/ogg",
		"flac": "audio/flac",
	}
	for format, want := range cases {
		if got := ContentTypeForFormat(format); got != want {
			t.Errorf("ContentTypeForFormat(%q) = %q, want %q", format, got, want)
		}
	}
}
