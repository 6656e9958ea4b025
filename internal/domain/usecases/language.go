package usecases

import (
	"context"
	"strings"

	"github.com/0xcro3dile/courserag/internal/domain/entities"
	"github.com/0xcro3dile/courserag/internal/domain/ports"
)

// LanguageNormalizer answers open-domain questions in the asker's language.
type LanguageNormalizer struct {
	detector   ports.LanguageDetector
	llm        ports.LLMService
	translator ports.Translator
	persona    string
}

// NewLanguageNormalizer creates the direct-LLM path.
func NewLanguageNormalizer(detector ports.LanguageDetector, llm ports.LLMService, translator ports.Translator, persona string) *LanguageNormalizer {
	if persona == "" {
		persona = "a helpful AI assistant for the course catalog"
	}
	return &LanguageNormalizer{
		detector:   detector,
		llm:        llm,
		translator: translator,
		persona:    persona,
	}
}

// AnswerInLanguage detects once, generates once, translates once.
// Any failing step aborts the whole operation.
func (n *LanguageNormalizer) AnswerInLanguage(ctx context.Context, query string) (entities.LocalizedAnswer, error) {
	lang, err := n.detector.Detect(query)
	if err != nil {
		return entities.LocalizedAnswer{}, &DetectionError{Err: err}
	}

	generated, err := n.llm.Generate(ctx, n.buildPrompt(query))
	if err != nil {
		return entities.LocalizedAnswer{}, &GenerationError{Err: err}
	}

	translated, err := n.translator.Translate(ctx, generated, lang)
	if err != nil {
		return entities.LocalizedAnswer{}, &TranslationError{Lang: lang, Err: err}
	}
	return entities.LocalizedAnswer{Text: translated, Language: lang}, nil
}

func (n *LanguageNormalizer) buildPrompt(query string) string {
	var sb strings.Builder
	sb.WriteString("You are ")
	sb.WriteString(n.persona)
	sb.WriteString(".\n\nQuestion: ")
	sb.WriteString(query)
	return sb.String()
}
