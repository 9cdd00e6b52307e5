// Package fault defines the typed error taxonomy shared by the pipeline and
// its adapters. Adapters raise these values and never touch HTTP concepts;
// the single mapping to status codes lives in the api package.
package fault

import "fmt"

// Stage identifies which pipeline stage produced an error.
type Stage string

const (
	StageValidation  Stage = "validation"
	StageSTT         Stage = "stt"
	StageTranslation Stage = "translation"
	StageTTS         Stage = "tts"
)

// Kind classifies an upstream failure beyond its raw status code.
type Kind string

const (
	KindRateLimit  Kind = "rate_limit"
	KindInvalidKey Kind = "invalid_key"
	KindBadInput   Kind = "bad_input"
	KindTransport  Kind = "transport"
	KindUnknown    Kind = "unknown"
)

// ValidationError rejects a request before any external call is made.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ServiceUnavailableError reports a required credential that was never
// configured, checked before any network call.
type ServiceUnavailableError struct {
	Service string // "STT", "Translation", "TTS"
}

func (e *ServiceUnavailableError) Error() string {
	return e.Service + " service not configured"
}

// UpstreamError carries a transport or API failure from an external service.
// Status is the upstream HTTP status where available, zero otherwise.
type UpstreamError struct {
	Stage   Stage
	Kind    Kind
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s upstream failure (%s, status %d): %s", e.Stage, e.Kind, e.Status, e.Message)
}

// ContentError reports an upstream call that succeeded but produced unusable
// output: an empty transcript or an empty translation.
type ContentError struct {
	Stage Stage
	Msg   string
}

func (e *ContentError) Error() string { return e.Msg }

// InternalError wraps an unexpected failure anywhere in the chain. The
// underlying cause is logged, never sent to the caller.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string { return "internal error: " + e.Err.Error() }

func (e *InternalError) Unwrap() error { return e.Err }

// KindForStatus derives an error kind from an upstream HTTP status.
func KindForStatus(status int) Kind {
	switch status {
	case 401, 403:
		return KindInvalidKey
	case 429:
		return KindRateLimit
	case 400, 422:
		return KindBadInput
	default:
		return KindUnknown
	}
}
