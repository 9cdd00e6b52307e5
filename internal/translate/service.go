package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/voxlate/voxlate/internal/config"
	"github.com/voxlate/voxlate/internal/fault"
	"github.com/voxlate/voxlate/internal/language"
)

const systemInstruction = "You are a professional translator. Translate the user's text accurately " +
	"and respond with only the translation, without quotes, notes, or explanations."

// Service builds the translation instruction and runs it against the
// configured provider. There is no retry and no fallback provider: a failed
// translation fails the whole request.
type Service struct {
	provider Provider
	name     string
	hasKey   bool
}

// NewService selects the provider from config. An unknown provider name
// falls back to OpenAI, matching the config default.
func NewService(cfg config.TranslateConfig) *Service {
	if strings.EqualFold(cfg.Provider, "anthropic") {
		return &Service{
			provider: NewAnthropicProvider(cfg.AnthropicKey, cfg.Model),
			name:     "anthropic",
			hasKey:   cfg.AnthropicKey != "",
		}
	}
	return &Service{
		provider: NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.Model),
		name:     "openai",
		hasKey:   cfg.OpenAIKey != "",
	}
}

// NewServiceWithProvider injects a provider directly. Used by tests and by
// callers that manage provider construction themselves.
func NewServiceWithProvider(p Provider) *Service {
	return &Service{provider: p, name: p.Name(), hasKey: true}
}

func (s *Service) Name() string { return s.name }

// Translate renders the language pair into display names and asks the
// provider for the translation. Empty content from a successful call is a
// content-level failure, distinct from a transport error.
func (s *Service) Translate(ctx context.Context, req Request) (*Response, error) {
	if !s.hasKey {
		return nil, &fault.ServiceUnavailableError{Service: "Translation"}
	}

	instruction := BuildInstruction(req.SourceLanguage, req.TargetLanguage, req.Text)

	text, err := s.provider.Complete(ctx, systemInstruction, instruction)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &fault.ContentError{Stage: fault.StageTranslation, Msg: "Translation failed"}
	}

	return &Response{Text: text, Provider: s.name}, nil
}

// BuildInstruction embeds the human-readable display names of both languages,
// never the raw codes.
func BuildInstruction(sourceLang, targetLang, text string) string {
	src := language.PromptName(sourceLang)
	dst := language.DisplayName(targetLang)
	return fmt.Sprintf("Translate the following text from %s to %s:\n\n%s", src, dst, text)
}
