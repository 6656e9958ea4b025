package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/0xcro3dile/courserag/internal/domain/usecases"
)

// TimeoutError means the per-request deadline expired.
type TimeoutError struct {
	After time.Duration
	Err   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out after %s: %v", e.After, e.Err)
}
func (e *TimeoutError) Unwrap() error { return e.Err }

// failure is how one error kind is shown to the caller.
type failure struct {
	kind       string
	status     int
	message    string
	degradable bool
}

// classify maps a use-case error to its user-facing form. Only upstream
// service failures may be degraded into a 200 reply.
func classify(err error) failure {
	var (
		te  *TimeoutError
		ge  *usecases.GenerationError
		se  *usecases.SearchError
		tre *usecases.TranslationError
		de  *usecases.DetectionError
		re  *usecases.RetrievalError
	)
	switch {
	case errors.As(err, &te):
		return failure{kind: "timeout", status: http.StatusGatewayTimeout, message: te.Error()}
	case errors.As(err, &ge):
		return failure{kind: "generation", status: http.StatusInternalServerError, degradable: true,
			message: fmt.Sprintf("An error occurred while calling the language model: %v", ge.Err)}
	case errors.As(err, &se):
		return failure{kind: "search", status: http.StatusInternalServerError, degradable: true,
			message: fmt.Sprintf("An error occurred while searching the web: %v", se.Err)}
	case errors.As(err, &tre):
		return failure{kind: "translation", status: http.StatusInternalServerError, degradable: true,
			message: fmt.Sprintf("An error occurred while translating the response: %v", tre.Err)}
	case errors.As(err, &de):
		return failure{kind: "detection", status: http.StatusInternalServerError, degradable: true,
			message: fmt.Sprintf("Could not detect the language of your question: %v", de.Err)}
	case errors.As(err, &re):
		return failure{kind: "retrieval", status: http.StatusInternalServerError, message: re.Error()}
	default:
		return failure{kind: "internal", status: http.StatusInternalServerError, message: err.Error()}
	}
}
