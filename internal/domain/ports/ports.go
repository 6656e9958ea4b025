// Package ports defines interfaces for external dependencies.
// Usecases depend on these abstractions; adapters implement them.
package ports

import (
	"context"

	"github.com/0xcro3dile/courserag/internal/domain/entities"
)

// EmbeddingService generates vector embeddings for text.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// CorpusPreparer is implemented by embedders that must see the whole corpus
// before they can embed (e.g. TF-IDF vocabularies).
type CorpusPreparer interface {
	Prepare(corpus []string) error
}

// LLMService generates text responses from a language model.
type LLMService interface {
	// Generate issues exactly one completion request for prompt.
	Generate(ctx context.Context, prompt string) (string, error)
}

// VectorStore persists and queries chunk embeddings.
type VectorStore interface {
	// Store saves chunks with their embeddings.
	Store(ctx context.Context, chunks []entities.Chunk) error

	// Search finds the most similar chunks to a query embedding.
	Search(ctx context.Context, embedding []float32, topK int) ([]entities.QueryResult, error)

	// Clear removes all data from the store.
	Clear(ctx context.Context) error
}

// ChunkSource lists every stored chunk in insertion order.
type ChunkSource interface {
	All(ctx context.Context) ([]entities.Chunk, error)
}

// CatalogLoader reads the tabular catalog inputs.
type CatalogLoader interface {
	LoadCourses(ctx context.Context) ([]entities.CourseRecord, error)
	LoadLanguageMap(ctx context.Context) (entities.LanguageCodeMap, error)
}

// WebResult is one organic web search hit.
type WebResult struct {
	Title   string
	URL     string
	Snippet string
}

// WebSearcher queries a web search provider.
type WebSearcher interface {
	// HasCredential reports whether the provider can be called at all.
	HasCredential() bool

	// Search returns organic results in provider rank order.
	Search(ctx context.Context, query string) ([]WebResult, error)
}

// LanguageDetector guesses the ISO 639-1 code of a text.
type LanguageDetector interface {
	Detect(text string) (string, error)
}

// Translator translates text into a target language code.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// FileWatcher monitors the catalog input files for changes.
type FileWatcher interface {
	// Watch emits an event whenever one of paths is created, written,
	// replaced or removed. The channel closes when ctx ends.
	Watch(ctx context.Context, paths []string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)
