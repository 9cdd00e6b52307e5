package handlers

import (
	"net/http"

	"github.com/voxlate/voxlate/internal/language"
	"github.com/voxlate/voxlate/internal/tts"
)

// CatalogHandler serves the static pickers the UI needs: supported languages
// and available synthesis voices.
type CatalogHandler struct {
	voices tts.VoiceLister
}

func NewCatalogHandler(voices tts.VoiceLister) *CatalogHandler {
	return &CatalogHandler{voices: voices}
}

func (h *CatalogHandler) Languages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"languages": language.Supported()})
}

func (h *CatalogHandler) Voices(w http.ResponseWriter, r *http.Request) {
	voices, err := h.voices.Voices(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"voices": voices})
}
