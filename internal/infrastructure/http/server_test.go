package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xcro3dile/courserag/internal/domain/entities"
	"github.com/0xcro3dile/courserag/internal/domain/usecases"
	"github.com/0xcro3dile/courserag/internal/infrastructure/metrics"
)

type mockAgent struct {
	outcome entities.Outcome
	err     error
	queries []string
	block   bool
}

func (m *mockAgent) Answer(ctx context.Context, query string) (entities.Outcome, error) {
	m.queries = append(m.queries, query)
	if m.block {
		<-ctx.Done()
		return entities.Outcome{}, &usecases.GenerationError{Err: ctx.Err()}
	}
	return m.outcome, m.err
}

type mockDirect struct {
	answer  entities.LocalizedAnswer
	err     error
	queries []string
}

func (m *mockDirect) AnswerInLanguage(ctx context.Context, query string) (entities.LocalizedAnswer, error) {
	m.queries = append(m.queries, query)
	return m.answer, m.err
}

func newTestServer(t *testing.T, agent Agent, direct DirectAnswerer, opts Options) http.Handler {
	t.Helper()
	s, err := NewServer(agent, direct, opts)
	require.NoError(t, err)
	return s.Handler()
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestWelcome(t *testing.T) {
	h := newTestServer(t, &mockAgent{}, &mockDirect{}, Options{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"`+WelcomeMessage+`"}`, rec.Body.String())
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t, &mockAgent{}, &mockDirect{}, Options{IndexSize: func() int { return 42 }})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","chunks":42}`, rec.Body.String())
}

func TestUI(t *testing.T) {
	h := newTestServer(t, &mockAgent{}, &mockDirect{}, Options{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ui", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Boss Wallah Chatbot")
}

func TestChat_DefaultTypeIsRAG(t *testing.T) {
	agent := &mockAgent{outcome: entities.Outcome{Text: "Honey Bee Farming is in Hindi.", Source: entities.SourceGrounded}}
	direct := &mockDirect{}
	h := newTestServer(t, agent, direct, Options{})

	rec := post(t, h, "/chat", `{"query":"bee course languages?"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"query":"bee course languages?","type":"rag","response":"Honey Bee Farming is in Hindi."}`, rec.Body.String())
	assert.Equal(t, []string{"bee course languages?"}, agent.queries)
	assert.Empty(t, direct.queries)
}

func TestChat_LLMTypeRoutesToDirect(t *testing.T) {
	agent := &mockAgent{}
	direct := &mockDirect{answer: entities.LocalizedAnswer{Text: "ನಮಸ್ಕಾರ", Language: "kn"}}
	h := newTestServer(t, agent, direct, Options{})

	rec := post(t, h, "/chat", `{"query":"ಹಲೋ","type":"llm"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"query":"ಹಲೋ","type":"llm","response":"ನಮಸ್ಕಾರ"}`, rec.Body.String())
	assert.Empty(t, agent.queries)
	assert.Len(t, direct.queries, 1)
}

func TestChat_UnknownTypeRunsAgent(t *testing.T) {
	agent := &mockAgent{outcome: entities.Outcome{Text: usecases.NoCredentialMessage, Source: entities.SourceNoCredential}}
	h := newTestServer(t, agent, &mockDirect{}, Options{})

	rec := post(t, h, "/chat", `{"query":"weather in Paris","type":"agent"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"agent"`)
	assert.Contains(t, rec.Body.String(), "SerpAPI key")
}

func TestAgentChat(t *testing.T) {
	agent := &mockAgent{outcome: entities.Outcome{Text: "snippet", Source: entities.SourceWeb}}
	h := newTestServer(t, agent, &mockDirect{}, Options{})

	rec := post(t, h, "/agent-chat", `{"query":"q","type":"llm"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"query":"q","type":"agent","response":"snippet"}`, rec.Body.String())
	assert.Len(t, agent.queries, 1)
}

func TestChat_BadInput(t *testing.T) {
	h := newTestServer(t, &mockAgent{}, &mockDirect{}, Options{})

	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{"query":`},
		{"empty query", `{"query":"   "}`},
		{"missing query", `{"type":"rag"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, "/chat", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"detail"`)
		})
	}
}

func TestChat_MethodNotAllowed(t *testing.T) {
	h := newTestServer(t, &mockAgent{}, &mockDirect{}, Options{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestChat_DegradedUpstreamError(t *testing.T) {
	agent := &mockAgent{err: &usecases.GenerationError{Err: errors.New("quota exhausted")}}
	h := newTestServer(t, agent, &mockDirect{}, Options{DegradeErrors: true})

	rec := post(t, h, "/chat", `{"query":"q"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "An error occurred while calling the language model: quota exhausted")
}

func TestChat_StrictUpstreamError(t *testing.T) {
	direct := &mockDirect{err: &usecases.TranslationError{Lang: "kn", Err: errors.New("503")}}
	h := newTestServer(t, &mockAgent{}, direct, Options{DegradeErrors: false})

	rec := post(t, h, "/chat", `{"query":"q","type":"llm"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "translating")
}

func TestChat_RetrievalErrorIsNeverDegraded(t *testing.T) {
	agent := &mockAgent{err: &usecases.RetrievalError{Err: errors.New("index closed")}}
	h := newTestServer(t, agent, &mockDirect{}, Options{DegradeErrors: true})

	rec := post(t, h, "/chat", `{"query":"q"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"detail"`)
}

func TestChat_Timeout(t *testing.T) {
	agent := &mockAgent{block: true}
	h := newTestServer(t, agent, &mockDirect{}, Options{RequestTimeout: 20 * time.Millisecond, DegradeErrors: true})

	rec := post(t, h, "/chat", `{"query":"q"}`)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Contains(t, rec.Body.String(), "timed out")
}

func TestRequestIDHeader(t *testing.T) {
	h := newTestServer(t, &mockAgent{}, &mockDirect{}, Options{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, &mockAgent{}, &mockDirect{}, Options{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/chat", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err        error
		kind       string
		status     int
		degradable bool
	}{
		{&usecases.SearchError{Err: errors.New("x")}, "search", 500, true},
		{&usecases.DetectionError{Err: errors.New("x")}, "detection", 500, true},
		{&TimeoutError{Err: context.DeadlineExceeded}, "timeout", 504, false},
		{errors.New("boom"), "internal", 500, false},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			f := classify(tt.err)
			assert.Equal(t, tt.kind, f.kind)
			assert.Equal(t, tt.status, f.status)
			assert.Equal(t, tt.degradable, f.degradable)
		})
	}
}

func TestRequestMetrics_UnknownPathsShareOneSeries(t *testing.T) {
	h := newTestServer(t, &mockAgent{}, &mockDirect{}, Options{})

	for _, path := range []string{"/wp-admin/setup.php", "/.env"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	scrape := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := scrape.Body.String()

	assert.Contains(t, body, `courserag_request_latency_ms_count{path="unmatched",status="404"}`)
	assert.Contains(t, body, `path="GET /healthz"`)
	assert.NotContains(t, body, "wp-admin")
	assert.NotContains(t, body, `path="/.env"`)
}

func TestRouteLabel(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/anything", nil)
	assert.Equal(t, "unmatched", routeLabel(r))

	r.Pattern = "POST /chat"
	assert.Equal(t, "POST /chat", routeLabel(r))
}

func TestStart_PortInUseReturnsAndCleansUp(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	s, err := NewServer(&mockAgent{}, &mockDirect{}, Options{Addr: busy.Addr().String()})
	require.NoError(t, err)

	before := runtime.NumGoroutine()
	err = s.Start(context.Background())

	require.Error(t, err)
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, time.Second, 10*time.Millisecond)
}
