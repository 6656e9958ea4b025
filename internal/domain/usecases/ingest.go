// Package usecases contains application business rules.
// Usecases orchestrate entities and depend on port interfaces only.
package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/0xcro3dile/courserag/internal/domain/entities"
	"github.com/0xcro3dile/courserag/internal/domain/ports"
)

const defaultEmbedBatch = 32

// IndexBuilder turns catalog records into embedded, stored chunks.
// It runs once at startup (or from the index command), never per request.
type IndexBuilder struct {
	embedder    ports.EmbeddingService
	vectorStore ports.VectorStore
	splitter    *TextSplitter
	batchSize   int

	// OnProgress, when set, is called after each embedded batch.
	OnProgress func(done, total int)
}

// NewIndexBuilder creates an IndexBuilder with injected dependencies.
func NewIndexBuilder(
	embedder ports.EmbeddingService,
	vectorStore ports.VectorStore,
	chunkSize, chunkOverlap int,
) *IndexBuilder {
	return &IndexBuilder{
		embedder:    embedder,
		vectorStore: vectorStore,
		splitter:    NewTextSplitter(chunkSize, chunkOverlap),
		batchSize:   defaultEmbedBatch,
	}
}

// RenderLanguages turns released-language codes into "Hindi, Tamil".
// A course with no codes renders as the empty string.
func RenderLanguages(codes []int, names entities.LanguageCodeMap) string {
	if len(codes) == 0 {
		return ""
	}
	rendered := make([]string, len(codes))
	for i, c := range codes {
		rendered[i] = names.Name(c)
	}
	return strings.Join(rendered, ", ")
}

// ComposePassage builds the single descriptive passage indexed for a course.
func ComposePassage(course entities.CourseRecord, names entities.LanguageCodeMap) string {
	return fmt.Sprintf("Course Title: %s. About Course: %s. Languages: %s. Audience: %s.",
		course.Title,
		course.Description,
		RenderLanguages(course.LanguageCodes, names),
		course.Audience,
	)
}

// Documents denormalizes every course into a Document, keeping catalog order.
func Documents(courses []entities.CourseRecord, names entities.LanguageCodeMap) []entities.Document {
	now := time.Now()
	docs := make([]entities.Document, len(courses))
	for i, c := range courses {
		docs[i] = entities.Document{
			ID:        generateDocID(i, c.Title),
			Name:      c.Title,
			Content:   ComposePassage(c, names),
			CreatedAt: now,
		}
	}
	return docs
}

// Build replaces the store contents with the chunks of every course.
// It returns the number of chunks stored.
func (b *IndexBuilder) Build(ctx context.Context, courses []entities.CourseRecord, names entities.LanguageCodeMap) (int, error) {
	if len(courses) == 0 {
		return 0, fmt.Errorf("catalog is empty")
	}

	var chunks []entities.Chunk
	for _, doc := range Documents(courses, names) {
		chunks = append(chunks, b.chunkDocument(doc)...)
	}

	if err := b.prepare(chunks); err != nil {
		return 0, err
	}
	if err := b.embed(ctx, chunks); err != nil {
		return 0, err
	}

	if err := b.vectorStore.Clear(ctx); err != nil {
		return 0, fmt.Errorf("clearing store: %w", err)
	}
	if err := b.vectorStore.Store(ctx, chunks); err != nil {
		return 0, fmt.Errorf("storing chunks: %w", err)
	}
	return len(chunks), nil
}

// Restore loads previously built chunks into the store without re-embedding.
// Corpus-dependent embedders are re-prepared from the stored texts so query
// vectors live in the same space as the stored ones.
func (b *IndexBuilder) Restore(ctx context.Context, source ports.ChunkSource) (int, error) {
	chunks, err := source.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading stored chunks: %w", err)
	}
	if len(chunks) == 0 {
		return 0, nil
	}
	if err := b.prepare(chunks); err != nil {
		return 0, err
	}
	if err := b.vectorStore.Clear(ctx); err != nil {
		return 0, fmt.Errorf("clearing store: %w", err)
	}
	if err := b.vectorStore.Store(ctx, chunks); err != nil {
		return 0, fmt.Errorf("storing chunks: %w", err)
	}
	return len(chunks), nil
}

func (b *IndexBuilder) prepare(chunks []entities.Chunk) error {
	p, ok := b.embedder.(ports.CorpusPreparer)
	if !ok {
		return nil
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	if err := p.Prepare(texts); err != nil {
		return fmt.Errorf("preparing embedder: %w", err)
	}
	return nil
}

func (b *IndexBuilder) embed(ctx context.Context, chunks []entities.Chunk) error {
	for start := 0; start < len(chunks); start += b.batchSize {
		end := start + b.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		texts := make([]string, end-start)
		for i := range texts {
			texts[i] = chunks[start+i].Content
		}
		embeddings, err := b.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding chunks %d-%d: %w", start, end, err)
		}
		if len(embeddings) != len(texts) {
			return fmt.Errorf("embedder returned %d vectors for %d texts", len(embeddings), len(texts))
		}
		for i := range texts {
			chunks[start+i].Embedding = embeddings[i]
		}
		if b.OnProgress != nil {
			b.OnProgress(end, len(chunks))
		}
	}
	return nil
}

// chunkDocument splits a passage into overlapping chunks.
func (b *IndexBuilder) chunkDocument(doc entities.Document) []entities.Chunk {
	pieces := b.splitter.Split(doc.Content)
	chunks := make([]entities.Chunk, 0, len(pieces))
	for i, p := range pieces {
		chunks = append(chunks, entities.Chunk{
			ID:         generateChunkID(doc.ID, i),
			DocumentID: doc.Name,
			Content:    p,
			Index:      i,
		})
	}
	return chunks
}

// generateDocID creates a deterministic ID for a course passage.
func generateDocID(row int, title string) string {
	hash := sha256.Sum256([]byte(strconv.Itoa(row) + "\x00" + title))
	return hex.EncodeToString(hash[:8])
}

// generateChunkID creates a deterministic ID for a chunk.
func generateChunkID(docID string, index int) string {
	hash := sha256.Sum256([]byte(docID + ":" + strconv.Itoa(index)))
	return hex.EncodeToString(hash[:8])
}
