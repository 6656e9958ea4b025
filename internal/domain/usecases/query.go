// Package usecases - query.go handles nearest-chunk retrieval.
package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/0xcro3dile/courserag/internal/domain/entities"
	"github.com/0xcro3dile/courserag/internal/domain/ports"
)

// DefaultTopK matches the similarity retriever's stock page size.
const DefaultTopK = 4

// Retriever returns the top-K chunks nearest to a query.
// It holds no mutable state and is safe for concurrent use.
type Retriever struct {
	embedder    ports.EmbeddingService
	vectorStore ports.VectorStore
	topK        int
}

// NewRetriever creates a Retriever with injected dependencies.
func NewRetriever(embedder ports.EmbeddingService, vectorStore ports.VectorStore, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{
		embedder:    embedder,
		vectorStore: vectorStore,
		topK:        topK,
	}
}

// TopK is the fixed number of chunks each call returns.
func (r *Retriever) TopK() int { return r.topK }

// Retrieve embeds the query and searches the index.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]entities.QueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &RetrievalError{Err: fmt.Errorf("empty query")}
	}

	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &RetrievalError{Err: fmt.Errorf("embedding query: %w", err)}
	}

	results, err := r.vectorStore.Search(ctx, embedding, r.topK)
	if err != nil {
		return nil, &RetrievalError{Err: fmt.Errorf("searching vectors: %w", err)}
	}
	return results, nil
}
