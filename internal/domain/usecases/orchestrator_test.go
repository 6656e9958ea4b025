package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xcro3dile/courserag/internal/domain/entities"
	"github.com/0xcro3dile/courserag/internal/domain/ports"
)

func newAgent(llm *mockLLM, searcher ports.WebSearcher) *AgenticSearch {
	return NewAgenticSearch(
		NewRetriever(&mockEmbedder{}, seededStore(), 4),
		NewAnswerSynthesizer(llm, ""),
		NewFallbackSearcher(searcher),
	)
}

func TestAgenticSearch_GroundedAnswerSkipsWeb(t *testing.T) {
	searcher := &mockSearcher{credential: true}
	agent := newAgent(&mockLLM{response: "Goat Farming is in Kannada."}, searcher)

	out, err := agent.Answer(context.Background(), "goat course language?")

	require.NoError(t, err)
	assert.Equal(t, entities.Outcome{Text: "Goat Farming is in Kannada.", Source: entities.SourceGrounded}, out)
	assert.Zero(t, searcher.calls)
}

func TestAgenticSearch_RefusalWithoutCredential(t *testing.T) {
	searcher := &mockSearcher{credential: false}
	agent := newAgent(&mockLLM{response: RefusalPhrase}, searcher)

	out, err := agent.Answer(context.Background(), "who won the cup?")

	require.NoError(t, err)
	assert.Equal(t, NoCredentialMessage, out.Text)
	assert.Equal(t, entities.SourceNoCredential, out.Source)
	assert.Zero(t, searcher.calls)
}

func TestAgenticSearch_NilSearcherIsUnconfigured(t *testing.T) {
	agent := NewAgenticSearch(
		NewRetriever(&mockEmbedder{}, seededStore(), 4),
		NewAnswerSynthesizer(&mockLLM{response: "not in the context"}, ""),
		NewFallbackSearcher(nil),
	)

	out, err := agent.Answer(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, NoCredentialMessage, out.Text)
}

func TestAgenticSearch_RefusalUsesFirstSnippet(t *testing.T) {
	searcher := &mockSearcher{credential: true, results: []ports.WebResult{
		{Title: "a", Snippet: "first snippet"},
		{Title: "b", Snippet: "second snippet"},
	}}
	agent := newAgent(&mockLLM{response: "That is not in the context."}, searcher)

	out, err := agent.Answer(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, entities.Outcome{Text: "first snippet", Source: entities.SourceWeb}, out)
	assert.Equal(t, 1, searcher.calls)
}

func TestAgenticSearch_SkipsResultsWithoutSnippet(t *testing.T) {
	searcher := &mockSearcher{credential: true, results: []ports.WebResult{
		{Title: "video", URL: "https://example.com/v"},
		{Title: "b", Snippet: "  usable snippet "},
	}}
	agent := newAgent(&mockLLM{response: RefusalPhrase}, searcher)

	out, err := agent.Answer(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, entities.Outcome{Text: "usable snippet", Source: entities.SourceWeb}, out)
	assert.Equal(t, 1, searcher.calls)
}

func TestAgenticSearch_NoResultHasSnippet(t *testing.T) {
	searcher := &mockSearcher{credential: true, results: []ports.WebResult{{Title: "map"}, {Title: "video", Snippet: " "}}}
	agent := newAgent(&mockLLM{response: RefusalPhrase}, searcher)

	out, err := agent.Answer(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, entities.Outcome{Text: NotFoundMessage, Source: entities.SourceNotFound}, out)
}

func TestAgenticSearch_NoOrganicResults(t *testing.T) {
	searcher := &mockSearcher{credential: true}
	agent := newAgent(&mockLLM{response: RefusalPhrase}, searcher)

	out, err := agent.Answer(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, NotFoundMessage, out.Text)
	assert.Equal(t, entities.SourceNotFound, out.Source)
}

func TestAgenticSearch_SearchFailure(t *testing.T) {
	searcher := &mockSearcher{credential: true, err: errors.New("timeout")}
	agent := newAgent(&mockLLM{response: RefusalPhrase}, searcher)

	_, err := agent.Answer(context.Background(), "q")

	var se *SearchError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, 1, searcher.calls, "search must not be retried")
}

func TestAgenticSearch_GenerationFailure(t *testing.T) {
	searcher := &mockSearcher{credential: true}
	agent := newAgent(&mockLLM{err: errors.New("quota")}, searcher)

	_, err := agent.Answer(context.Background(), "q")

	var ge *GenerationError
	assert.True(t, errors.As(err, &ge))
	assert.Zero(t, searcher.calls)
}

func TestAgenticSearch_RetrievalFailure(t *testing.T) {
	llm := &mockLLM{response: "unused"}
	agent := NewAgenticSearch(
		NewRetriever(&mockEmbedder{embedFn: func(string) ([]float32, error) { return nil, errors.New("down") }}, seededStore(), 4),
		NewAnswerSynthesizer(llm, ""),
		NewFallbackSearcher(nil),
	)

	_, err := agent.Answer(context.Background(), "q")

	var re *RetrievalError
	assert.True(t, errors.As(err, &re))
	assert.Empty(t, llm.prompts)
}
