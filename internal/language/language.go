// Package language holds the static lookup table resolving language codes to
// the display names used in translation instructions and by the UI picker.
package language

import (
	"sort"
	"strings"
)

// Auto is the sentinel source-language code meaning "detect".
const Auto = "auto"

// AutoDisplay is shown to users for an auto-detected source language.
const AutoDisplay = "Auto-detected"

// autoPromptDisplay is how the detected source language is referred to inside
// a translation instruction.
const autoPromptDisplay = "the detected language"

var displayNames = map[string]string{
	"ar": "Arabic",
	"bn": "Bengali",
	"cs": "Czech",
	"da": "Danish",
	"de": "German",
	"el": "Greek",
	"en": "English",
	"es": "Spanish",
	"fi": "Finnish",
	"fr": "French",
	"he": "Hebrew",
	"hi": "Hindi",
	"hu": "Hungarian",
	"id": "Indonesian",
	"it": "Italian",
	"ja": "Japanese",
	"ko": "Korean",
	"ms": "Malay",
	"nl": "Dutch",
	"no": "Norwegian",
	"pl": "Polish",
	"pt": "Portuguese",
	"ro": "Romanian",
	"ru": "Russian",
	"sk": "Slovak",
	"sv": "Swedish",
	"th": "Thai",
	"tr": "Turkish",
	"uk": "Ukrainian",
	"vi": "Vietnamese",
	"zh": "Chinese",
}

// DisplayName resolves a language code to its human-readable name. Unknown
// codes are returned as-is so the translation instruction stays usable.
func DisplayName(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == Auto {
		return AutoDisplay
	}
	if name, ok := displayNames[code]; ok {
		return name
	}
	return code
}

// PromptName is like DisplayName but phrased for use inside a translation
// instruction ("auto" reads as "the detected language").
func PromptName(code string) string {
	if strings.EqualFold(strings.TrimSpace(code), Auto) {
		return autoPromptDisplay
	}
	return DisplayName(code)
}

// Entry is one row of the supported-language table.
type Entry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Supported returns the full language table in code order, with the "auto"
// sentinel first. The slice is freshly allocated on each call.
func Supported() []Entry {
	codes := make([]string, 0, len(displayNames))
	for code := range displayNames {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	entries := make([]Entry, 0, len(codes)+1)
	entries = append(entries, Entry{Code: Auto, Name: AutoDisplay})
	for _, code := range codes {
		entries = append(entries, Entry{Code: code, Name: displayNames[code]})
	}
	return entries
}
