package tts

import (
	"context"
	"io"
)

// SynthesisRequest holds the parameters for one synthesis call. VoiceID,
// ModelID and OutputFormat are optional overrides; the adapter resolves them
// against configured defaults.
type SynthesisRequest struct {
	Text         string
	VoiceID      string
	ModelID      string
	OutputFormat string
}

// Stream is a lazily-consumed synthesized audio body. Ownership transfers to
// exactly one consumer, which must Close the Audio reader. It is never
// buffered in full before forwarding.
type Stream struct {
	Audio       io.ReadCloser
	ContentType string
	Format      string
}

// Synthesizer is the interface for streaming text-to-speech backends.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (*Stream, error)
	Name() string
}

// Voice describes one available TTS voice.
type Voice struct {
	ID       string `json:"voice_id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// VoiceLister exposes the upstream voice catalog for UI pickers.
type VoiceLister interface {
	Voices(ctx context.Context) ([]Voice, error)
}
