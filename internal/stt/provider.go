package stt

import "context"

// TranscriptionRequest holds the parameters for one transcription call.
type TranscriptionRequest struct {
	Audio []byte
	// Format is the encoding hint from the client ("mp3", "wav", "webm").
	Format string
	// Language is an ISO-639-1 hint, or "auto" to let the service detect it.
	Language string
}

// TranscriptionResponse holds the transcription result.
type TranscriptionResponse struct {
	Text     string
	Language string
}

// Provider is the interface for speech-to-text backends.
type Provider interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error)
	Name() string
}
