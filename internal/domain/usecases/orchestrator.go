package usecases

import (
	"context"

	"github.com/0xcro3dile/courserag/internal/domain/entities"
)

// AgenticSearch tries a grounded answer first and escalates to the web
// only when the synthesizer reports the catalog context was insufficient.
type AgenticSearch struct {
	retriever   *Retriever
	synthesizer *AnswerSynthesizer
	fallback    *FallbackSearcher
}

// NewAgenticSearch wires the three stages together.
func NewAgenticSearch(retriever *Retriever, synthesizer *AnswerSynthesizer, fallback *FallbackSearcher) *AgenticSearch {
	return &AgenticSearch{
		retriever:   retriever,
		synthesizer: synthesizer,
		fallback:    fallback,
	}
}

// Answer runs retrieve → synthesize → (optional) web search.
// Terminal outcomes: grounded answer, web snippet, no-credential message,
// nothing-found message.
func (a *AgenticSearch) Answer(ctx context.Context, query string) (entities.Outcome, error) {
	results, err := a.retriever.Retrieve(ctx, query)
	if err != nil {
		return entities.Outcome{}, err
	}

	answer, err := a.synthesizer.Synthesize(ctx, query, entities.NewRetrievedContext(results))
	if err != nil {
		return entities.Outcome{}, err
	}
	if answer.Grounded {
		return entities.Outcome{Text: answer.Text, Source: entities.SourceGrounded}, nil
	}

	return a.fallback.SearchWeb(ctx, query)
}
