package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/voxlate/voxlate/internal/fault"
)

// ErrorBody is the JSON error shape returned to callers. Details and Message
// carry upstream-specific context when available, never a stack trace.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the single place typed faults become HTTP. Handlers call
// it and write the result; nothing below the handler layer knows about
// status codes.
func ErrorResponse(err error) (int, ErrorBody) {
	var vErr *fault.ValidationError
	if errors.As(err, &vErr) {
		return http.StatusBadRequest, ErrorBody{Error: vErr.Msg}
	}

	var sErr *fault.ServiceUnavailableError
	if errors.As(err, &sErr) {
		return http.StatusServiceUnavailable, ErrorBody{Error: sErr.Error()}
	}

	var cErr *fault.ContentError
	if errors.As(err, &cErr) {
		// Empty speech is a user-input problem; an empty translation is a
		// service problem. The asymmetry is intentional.
		if cErr.Stage == fault.StageSTT {
			return http.StatusBadRequest, ErrorBody{Error: cErr.Msg}
		}
		return http.StatusInternalServerError, ErrorBody{Error: cErr.Msg}
	}

	var uErr *fault.UpstreamError
	if errors.As(err, &uErr) {
		return upstreamResponse(uErr)
	}

	return http.StatusInternalServerError, ErrorBody{Error: "Internal server error"}
}

func upstreamResponse(uErr *fault.UpstreamError) (int, ErrorBody) {
	status := uErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	if uErr.Stage == fault.StageTTS {
		// TTS keeps the upstream status but a fixed message; 401 and 429 are
		// already distinguished by status.
		return status, ErrorBody{Error: "TTS generation failed", Details: uErr.Message}
	}

	kind := uErr.Kind
	if kind == fault.KindUnknown && strings.Contains(strings.ToLower(uErr.Message), "rate limit") {
		kind = fault.KindRateLimit
	}

	switch kind {
	case fault.KindRateLimit:
		return http.StatusTooManyRequests, ErrorBody{Error: "Rate limit exceeded", Details: uErr.Message}
	case fault.KindInvalidKey:
		return http.StatusUnauthorized, ErrorBody{Error: "Invalid API key", Details: uErr.Message}
	}

	if uErr.Stage == fault.StageTranslation {
		return status, ErrorBody{Error: "Translation failed", Details: uErr.Message}
	}
	return status, ErrorBody{Error: "Transcription failed", Details: uErr.Message}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	status, body := ErrorResponse(err)
	writeJSON(w, status, body)
}
