package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/0xcro3dile/courserag/internal/domain/ports"
)

// LLMTranslator asks the language model to translate. Useful where the
// public translation endpoint is unreachable.
type LLMTranslator struct {
	llm ports.LLMService
}

// NewLLMTranslator wraps an LLM as a ports.Translator.
func NewLLMTranslator(llm ports.LLMService) *LLMTranslator {
	return &LLMTranslator{llm: llm}
}

// Translate returns text rendered in the language with ISO 639-1 code targetLang.
func (t *LLMTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if targetLang == "" {
		return "", fmt.Errorf("no target language")
	}
	prompt := fmt.Sprintf(
		"Translate the following text into the language with ISO 639-1 code %q. "+
			"Keep formatting. Reply with the translation only.\n\n%s", targetLang, text)
	out, err := t.llm.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
