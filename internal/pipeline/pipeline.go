// Package pipeline sequences the push-to-talk translation chain:
// transcription, translation, synthesis. The three upstream calls form a
// strictly sequential blocking chain; each stage's output gates the next
// stage's input and a failure on any stage terminates the whole request
// with no retry.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/voxlate/voxlate/internal/fault"
	"github.com/voxlate/voxlate/internal/observability"
	"github.com/voxlate/voxlate/internal/stt"
	"github.com/voxlate/voxlate/internal/translate"
	"github.com/voxlate/voxlate/internal/tts"
)

// Request is a validated push-to-talk request. Audio is the decoded clip,
// never empty; SourceLanguage may be the "auto" sentinel.
type Request struct {
	Audio          []byte
	AudioFormat    string
	SourceLanguage string
	TargetLanguage string
	VoiceID        string
	ModelID        string
}

// Latencies records per-stage and total elapsed wall-clock milliseconds.
// A stage that never ran stays at zero; total is always set, even on failure.
type Latencies struct {
	STT         int64
	Translation int64
	TTS         int64
	Total       int64
}

// Result is threaded through the stages and handed back once synthesis has
// started. Audio is a live stream owned by the caller; it is discarded with
// the response and never persisted here.
type Result struct {
	SourceText string
	TargetText string
	Audio      *tts.Stream
	Latencies  Latencies
}

// Translator is the translation stage as consumed by the pipeline.
type Translator interface {
	Translate(ctx context.Context, req translate.Request) (*translate.Response, error)
}

// Pipeline orchestrates the three adapters. It holds no mutable state;
// concurrent Run calls are independent.
type Pipeline struct {
	stt        stt.Provider
	translator Translator
	tts        tts.Synthesizer
	metrics    *observability.Metrics
}

func New(sttProvider stt.Provider, translator Translator, synthesizer tts.Synthesizer, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		stt:        sttProvider,
		translator: translator,
		tts:        synthesizer,
		metrics:    metrics,
	}
}

// Run executes the full chain. On failure the returned Result still carries
// the latencies and any text produced before the failing stage; the error is
// always one of the fault package's typed values.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	res := &Result{}
	defer func() {
		res.Latencies.Total = time.Since(start).Milliseconds()
		p.metrics.ObserveTotal(time.Since(start))
	}()

	p.metrics.CountRequest(req.SourceLanguage, req.TargetLanguage)

	// Transcribing
	sttStart := time.Now()
	transcript, err := p.stt.Transcribe(ctx, stt.TranscriptionRequest{
		Audio:    req.Audio,
		Format:   req.AudioFormat,
		Language: req.SourceLanguage,
	})
	res.Latencies.STT = time.Since(sttStart).Milliseconds()
	p.metrics.ObserveStage(string(fault.StageSTT), time.Since(sttStart))
	if err != nil {
		p.metrics.CountFailure(string(fault.StageSTT))
		return res, asFault(err)
	}
	if transcript.Text == "" {
		p.metrics.CountFailure(string(fault.StageSTT))
		return res, &fault.ContentError{Stage: fault.StageSTT, Msg: "No speech detected in audio"}
	}
	res.SourceText = transcript.Text

	// Translating
	trStart := time.Now()
	translated, err := p.translator.Translate(ctx, translate.Request{
		Text:           transcript.Text,
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
	})
	res.Latencies.Translation = time.Since(trStart).Milliseconds()
	p.metrics.ObserveStage(string(fault.StageTranslation), time.Since(trStart))
	if err != nil {
		p.metrics.CountFailure(string(fault.StageTranslation))
		return res, asFault(err)
	}
	res.TargetText = translated.Text

	// Synthesizing
	ttsStart := time.Now()
	stream, err := p.tts.Synthesize(ctx, tts.SynthesisRequest{
		Text:         translated.Text,
		VoiceID:      req.VoiceID,
		ModelID:      req.ModelID,
		OutputFormat: req.AudioFormat,
	})
	res.Latencies.TTS = time.Since(ttsStart).Milliseconds()
	p.metrics.ObserveStage(string(fault.StageTTS), time.Since(ttsStart))
	if err != nil {
		p.metrics.CountFailure(string(fault.StageTTS))
		return res, asFault(err)
	}
	res.Audio = stream

	return res, nil
}

// asFault guarantees the caller only ever sees typed fault values. Anything
// unexpected is wrapped as an internal error.
func asFault(err error) error {
	var (
		vErr *fault.ValidationError
		sErr *fault.ServiceUnavailableError
		uErr *fault.UpstreamError
		cErr *fault.ContentError
		iErr *fault.InternalError
	)
	switch {
	case errors.As(err, &vErr), errors.As(err, &sErr), errors.As(err, &uErr),
		errors.As(err, &cErr), errors.As(err, &iErr):
		return err
	default:
		return &fault.InternalError{Err: err}
	}
}
