package translate

import "context"

// Request is one translation call.
type Request struct {
	Text           string
	SourceLanguage string // code, possibly "auto"
	TargetLanguage string // code, required
}

// Response is the translated text plus provider metadata.
type Response struct {
	Text     string
	Provider string
	Model    string
}

// Provider abstracts a text-generation backend used for translation.
type Provider interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Name() string
}
