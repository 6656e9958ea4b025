// Package bootstrap builds the service graph from configuration.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/0xcro3dile/courserag/internal/adapters/embedding"
	"github.com/0xcro3dile/courserag/internal/adapters/langdetect"
	"github.com/0xcro3dile/courserag/internal/adapters/llm"
	"github.com/0xcro3dile/courserag/internal/adapters/loader"
	"github.com/0xcro3dile/courserag/internal/adapters/translate"
	"github.com/0xcro3dile/courserag/internal/adapters/vectordb"
	"github.com/0xcro3dile/courserag/internal/adapters/websearch"
	"github.com/0xcro3dile/courserag/internal/domain/entities"
	"github.com/0xcro3dile/courserag/internal/domain/ports"
	"github.com/0xcro3dile/courserag/internal/domain/usecases"
	"github.com/0xcro3dile/courserag/internal/infrastructure/config"
	"github.com/0xcro3dile/courserag/internal/infrastructure/logger"
	"github.com/0xcro3dile/courserag/internal/infrastructure/metrics"
)

// FingerprintKey is the SQLite meta key holding Config.EmbedderFingerprint.
const FingerprintKey = "embedder"

// App is the wired service.
type App struct {
	Config *config.Config
	Agent  *usecases.AgenticSearch
	Direct *usecases.LanguageNormalizer
	Index  *vectordb.InMemoryStore
	// Restored is true when the index came from the SQLite file.
	Restored bool
}

// New validates cfg, wires every component and loads the serving index.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, &config.ConfigurationError{Field: "logging.level", Reason: err.Error()}
	}
	logger.SetLevel(level)

	embedder, err := NewEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	gen, err := NewLLM(cfg)
	if err != nil {
		return nil, err
	}

	index := vectordb.NewInMemoryStore()
	restored, err := loadIndex(ctx, cfg, embedder, index)
	if err != nil {
		return nil, err
	}
	metrics.SetIndexedChunks(index.Count())

	retriever := usecases.NewRetriever(embedder, timedStore{index}, cfg.Retrieval.TopK)
	synthesizer := usecases.NewAnswerSynthesizer(gen, cfg.Server.Persona)
	fallback := usecases.NewFallbackSearcher(NewSearcher(cfg))

	return &App{
		Config:   cfg,
		Agent:    usecases.NewAgenticSearch(retriever, synthesizer, fallback),
		Direct:   usecases.NewLanguageNormalizer(langdetect.NewWhatlangDetector(), gen, NewTranslator(cfg, gen), cfg.Server.Persona),
		Index:    index,
		Restored: restored,
	}, nil
}

// NewEmbedder selects the embedding backend.
func NewEmbedder(cfg *config.Config) (ports.EmbeddingService, error) {
	switch cfg.Embedding.Provider {
	case "tfidf":
		return embedding.NewTFIDFEmbedder(), nil
	case "openai":
		return embedding.NewOpenAIAdapter(cfg.Embedding.APIKey, cfg.Embedding.BaseURL, cfg.Embedding.Model), nil
	case "ollama":
		return embedding.NewOllamaAdapter(cfg.Embedding.BaseURL, cfg.Embedding.Model), nil
	default:
		return nil, &config.ConfigurationError{Field: "embedding.provider", Reason: fmt.Sprintf("unknown provider %q", cfg.Embedding.Provider)}
	}
}

// NewLLM selects the generation backend.
func NewLLM(cfg *config.Config) (ports.LLMService, error) {
	switch cfg.LLM.Provider {
	case "openai":
		return llm.NewOpenAILLMAdapter(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model), nil
	case "ollama":
		return llm.NewOllamaLLMAdapter(cfg.LLM.BaseURL, cfg.LLM.Model), nil
	default:
		return nil, &config.ConfigurationError{Field: "llm.provider", Reason: fmt.Sprintf("unknown provider %q", cfg.LLM.Provider)}
	}
}

// NewTranslator selects the translator for direct answers.
func NewTranslator(cfg *config.Config, gen ports.LLMService) ports.Translator {
	if cfg.Translate.Provider == "llm" {
		return translate.NewLLMTranslator(gen)
	}
	return translate.NewGoogleTranslator(cfg.Translate.Endpoint, cfg.Translate.Timeout)
}

// NewSearcher returns the web searcher; without a key it reports no credential.
func NewSearcher(cfg *config.Config) ports.WebSearcher {
	return websearch.NewSerpAPISearcher(cfg.Search.Endpoint, cfg.Search.APIKey, cfg.Search.Timeout)
}

// NewCatalogLoader reads the course and language CSVs named in cfg.
func NewCatalogLoader(cfg *config.Config) *loader.CSVCatalogLoader {
	return loader.NewCSVCatalogLoader(cfg.CoursesPath(), cfg.LangMapPath())
}

// WriteIndex builds the index from the CSVs straight into the SQLite file
// and stamps it with the embedder fingerprint.
func WriteIndex(ctx context.Context, cfg *config.Config, embedder ports.EmbeddingService, onProgress func(done, total int)) (int, error) {
	courses, names, err := loadCatalog(ctx, cfg)
	if err != nil {
		return 0, err
	}

	store, err := vectordb.NewSQLiteStore(cfg.IndexPath())
	if err != nil {
		return 0, err
	}
	defer store.Close()

	builder := usecases.NewIndexBuilder(indexingEmbedder(embedder), store, cfg.Chunking.Size, cfg.Chunking.Overlap)
	builder.OnProgress = onProgress
	n, err := builder.Build(ctx, courses, names)
	if err != nil {
		return 0, err
	}
	if err := store.SetMeta(ctx, FingerprintKey, cfg.EmbedderFingerprint()); err != nil {
		return 0, fmt.Errorf("recording index fingerprint: %w", err)
	}
	return n, nil
}

// loadIndex restores from SQLite when a compatible index exists and
// otherwise builds from the CSVs. It reports whether it restored.
func loadIndex(ctx context.Context, cfg *config.Config, embedder ports.EmbeddingService, index ports.VectorStore) (bool, error) {
	builder := usecases.NewIndexBuilder(indexingEmbedder(embedder), index, cfg.Chunking.Size, cfg.Chunking.Overlap)

	if n, ok := tryRestore(ctx, cfg, builder); ok {
		logger.Infof("restored %d chunks from %s", n, cfg.IndexPath())
		return true, nil
	}

	courses, names, err := loadCatalog(ctx, cfg)
	if err != nil {
		return false, err
	}
	start := time.Now()
	n, err := builder.Build(ctx, courses, names)
	if err != nil {
		return false, fmt.Errorf("building index: %w", err)
	}
	logger.Infof("indexed %d chunks from %d courses in %v", n, len(courses), time.Since(start))
	return false, nil
}

func tryRestore(ctx context.Context, cfg *config.Config, builder *usecases.IndexBuilder) (int, bool) {
	path := cfg.IndexPath()
	if _, err := os.Stat(path); err != nil {
		return 0, false
	}

	store, err := vectordb.NewSQLiteStore(path)
	if err != nil {
		logger.Warnf("opening persisted index: %v", err)
		return 0, false
	}
	defer store.Close()

	fp, err := store.Meta(ctx, FingerprintKey)
	if err != nil {
		logger.Warnf("reading index fingerprint: %v", err)
		return 0, false
	}
	if fp != cfg.EmbedderFingerprint() {
		logger.Warnf("persisted index was built with %q, want %q; rebuilding from CSV", fp, cfg.EmbedderFingerprint())
		return 0, false
	}

	n, err := builder.Restore(ctx, store)
	if err != nil {
		logger.Warnf("restoring persisted index: %v", err)
		return 0, false
	}
	return n, n > 0
}

func loadCatalog(ctx context.Context, cfg *config.Config) ([]entities.CourseRecord, entities.LanguageCodeMap, error) {
	l := NewCatalogLoader(cfg)
	courses, err := l.LoadCourses(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading courses: %w", err)
	}
	names, err := l.LoadLanguageMap(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading language map: %w", err)
	}
	return courses, names, nil
}

// indexingEmbedder retries remote embedders during builds. Corpus-prepared
// embedders run locally and are returned as is so Prepare stays visible.
func indexingEmbedder(e ports.EmbeddingService) ports.EmbeddingService {
	if _, ok := e.(ports.CorpusPreparer); ok {
		return e
	}
	return embedding.NewRetryingEmbedder(e, 3, time.Second)
}

// timedStore records retrieval latency around every search.
type timedStore struct {
	ports.VectorStore
}

func (s timedStore) Search(ctx context.Context, embedding []float32, topK int) ([]entities.QueryResult, error) {
	defer metrics.ObserveRetrieval(time.Now())
	return s.VectorStore.Search(ctx, embedding, topK)
}
