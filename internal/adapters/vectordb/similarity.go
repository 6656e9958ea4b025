// Package vectordb provides the ports.VectorStore adapters: an in-memory
// serving index and a SQLite file that persists a built index between runs.
package vectordb

import (
	"math"
	"sort"

	"github.com/0xcro3dile/courserag/internal/domain/entities"
)

// rank scores every chunk against query and keeps the best topK.
// Ties keep insertion order, so identical queries return identical lists.
func rank(query []float32, chunks []entities.Chunk, topK int) []entities.QueryResult {
	if topK <= 0 || len(chunks) == 0 {
		return nil
	}

	results := make([]entities.QueryResult, len(chunks))
	for i, c := range chunks {
		results[i] = entities.QueryResult{
			Chunk:     c,
			Score:     cosineSimilarity(query, c.Embedding),
			SourceDoc: c.DocumentID,
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// cosineSimilarity returns 0 for mismatched or zero vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
