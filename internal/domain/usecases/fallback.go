package usecases

import (
	"context"
	"strings"

	"github.com/0xcro3dile/courserag/internal/domain/entities"
	"github.com/0xcro3dile/courserag/internal/domain/ports"
)

const (
	// NoCredentialMessage is returned when web search is not configured.
	NoCredentialMessage = "I can only answer based on the provided data. To search the web, please provide a SerpAPI key."
	// NotFoundMessage is returned when the provider has no organic results.
	NotFoundMessage = "I could not find any information on the web for your query."
)

// FallbackSearcher answers from the first organic web result.
type FallbackSearcher struct {
	searcher ports.WebSearcher
}

// NewFallbackSearcher accepts a nil searcher, which behaves as unconfigured.
func NewFallbackSearcher(searcher ports.WebSearcher) *FallbackSearcher {
	return &FallbackSearcher{searcher: searcher}
}

// SearchWeb issues at most one search request and never retries.
func (f *FallbackSearcher) SearchWeb(ctx context.Context, query string) (entities.Outcome, error) {
	if f.searcher == nil || !f.searcher.HasCredential() {
		return entities.Outcome{Text: NoCredentialMessage, Source: entities.SourceNoCredential}, nil
	}

	results, err := f.searcher.Search(ctx, query)
	if err != nil {
		return entities.Outcome{}, &SearchError{Err: err}
	}
	// Results without a snippet (videos, maps) carry nothing to answer with.
	for _, r := range results {
		if snippet := strings.TrimSpace(r.Snippet); snippet != "" {
			return entities.Outcome{Text: snippet, Source: entities.SourceWeb}, nil
		}
	}
	return entities.Outcome{Text: NotFoundMessage, Source: entities.SourceNotFound}, nil
}
