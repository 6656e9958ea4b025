package usecases

import "fmt"

// GenerationError means the language-model call failed.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return fmt.Sprintf("generation failed: %v", e.Err) }
func (e *GenerationError) Unwrap() error { return e.Err }

// RetrievalError means embedding the query or searching the index failed.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string { return fmt.Sprintf("retrieval failed: %v", e.Err) }
func (e *RetrievalError) Unwrap() error { return e.Err }

// SearchError means a web search was attempted and failed.
type SearchError struct {
	Err error
}

func (e *SearchError) Error() string { return fmt.Sprintf("web search failed: %v", e.Err) }
func (e *SearchError) Unwrap() error { return e.Err }

// DetectionError means the query language could not be detected.
type DetectionError struct {
	Err error
}

func (e *DetectionError) Error() string { return fmt.Sprintf("language detection failed: %v", e.Err) }
func (e *DetectionError) Unwrap() error { return e.Err }

// TranslationError means translating the answer failed.
type TranslationError struct {
	Lang string
	Err  error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translation to %q failed: %v", e.Lang, e.Err)
}
func (e *TranslationError) Unwrap() error { return e.Err }
