package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestHandlerExposesCollectors(t *testing.T) {
	SetIndexedChunks(12)
	ObserveRequest("/chat", "200", time.Now())
	IncOutcome("web")
	IncFailure("generation")

	body := scrape(t)

	assert.Contains(t, body, "courserag_indexed_chunks 12")
	assert.Contains(t, body, `courserag_request_latency_ms_count{path="/chat",status="200"}`)
	assert.Contains(t, body, `courserag_outcome_total{source="web"}`)
	assert.Contains(t, body, `courserag_failure_total{kind="generation"}`)
}
