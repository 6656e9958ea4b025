// Package entities contains core business entities.
// These are pure domain objects with no external dependencies.
package entities

import (
	"strings"
	"time"
)

// CourseRecord is one row of the course catalog.
// Loaded once at startup and never mutated.
type CourseRecord struct {
	Title         string
	Description   string
	Audience      string
	LanguageCodes []int
}

// LanguageCodeMap maps a numeric released-language code to its display name.
type LanguageCodeMap map[int]string

// UnknownLanguage is rendered for codes missing from a LanguageCodeMap.
const UnknownLanguage = "Unknown"

// Name returns the display name for code, or UnknownLanguage.
func (m LanguageCodeMap) Name(code int) string {
	if name, ok := m[code]; ok {
		return name
	}
	return UnknownLanguage
}

// Document is the composed descriptive passage of a single course.
type Document struct {
	ID        string
	Name      string
	Content   string
	CreatedAt time.Time
}

// Chunk represents a piece of a document for embedding.
type Chunk struct {
	ID         string
	DocumentID string
	Content    string
	Index      int       // Position in document
	Embedding  []float32 // Vector representation (populated by adapter)
}

// QueryResult represents a search result with relevance.
type QueryResult struct {
	Chunk     Chunk
	Score     float64 // Similarity score
	SourceDoc string  // Course title for citation
}

// RetrievedContext is the ordered chunk text handed to the synthesizer.
// It is built per request and owned by that request only.
type RetrievedContext []string

// ContextSeparator joins chunk texts in a RetrievedContext.
const ContextSeparator = " "

// NewRetrievedContext keeps the retrieval order of results.
func NewRetrievedContext(results []QueryResult) RetrievedContext {
	rc := make(RetrievedContext, len(results))
	for i, r := range results {
		rc[i] = r.Chunk.Content
	}
	return rc
}

// String concatenates the chunk texts.
func (rc RetrievedContext) String() string {
	return strings.Join(rc, ContextSeparator)
}

// Mode selects the answering path for a chat request.
type Mode int

const (
	// ModeGrounded routes to retrieval with web fallback.
	ModeGrounded Mode = iota
	// ModeDirectLLM routes to open-domain generation with translation.
	ModeDirectLLM
)

func (m Mode) String() string {
	if m == ModeDirectLLM {
		return "direct-llm"
	}
	return "grounded"
}

// ParseMode maps the wire "type" field to a Mode. Only "llm" selects the
// direct path; every other value, including empty, is grounded.
func ParseMode(typ string) Mode {
	if strings.EqualFold(strings.TrimSpace(typ), "llm") {
		return ModeDirectLLM
	}
	return ModeGrounded
}

// ChatRequest is a validated query at the input boundary.
type ChatRequest struct {
	Query string
	Mode  Mode
}

// ChatResponse is the output boundary value.
type ChatResponse struct {
	Query    string `json:"query"`
	Type     string `json:"type"`
	Response string `json:"response"`
}

// OutcomeSource names which terminal branch produced an answer.
type OutcomeSource string

const (
	SourceGrounded     OutcomeSource = "grounded"
	SourceWeb          OutcomeSource = "web"
	SourceNoCredential OutcomeSource = "no_credential"
	SourceNotFound     OutcomeSource = "not_found"
)

// Outcome is the result of the agentic search.
type Outcome struct {
	Text   string
	Source OutcomeSource
}

// Answer is what the synthesizer produced for one query.
type Answer struct {
	Text string
	// Grounded is false when the model signalled the context was insufficient.
	Grounded bool
}

// LocalizedAnswer is a direct-LLM answer translated into the query language.
type LocalizedAnswer struct {
	Text     string
	Language string
}
