// Package http is the outermost layer: it decodes chat requests, runs the
// matching use case and decides how failures are shown to the caller.
package http

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/0xcro3dile/courserag/internal/domain/entities"
	"github.com/0xcro3dile/courserag/internal/infrastructure/logger"
	"github.com/0xcro3dile/courserag/internal/infrastructure/metrics"
)

//go:embed templates/*
var templatesFS embed.FS

// WelcomeMessage is returned by GET /.
const WelcomeMessage = "Welcome to the Boss Wallah Chatbot API! Use the /chat endpoint to get started."

const maxBodyBytes = 1 << 20

// Agent answers catalog questions with web fallback.
type Agent interface {
	Answer(ctx context.Context, query string) (entities.Outcome, error)
}

// DirectAnswerer answers without the catalog, in the asker's language.
type DirectAnswerer interface {
	AnswerInLanguage(ctx context.Context, query string) (entities.LocalizedAnswer, error)
}

// Options tune the boundary behaviour.
type Options struct {
	Addr string
	// RequestTimeout bounds each chat request; zero means no deadline.
	RequestTimeout time.Duration
	DegradeErrors  bool
	// IndexSize reports the serving index size for /healthz.
	IndexSize func() int
}

// Server is the HTTP server for the chat API and form UI.
type Server struct {
	agent     Agent
	direct    DirectAnswerer
	opts      Options
	templates *template.Template
}

// NewServer creates a new HTTP server.
func NewServer(agent Agent, direct DirectAnswerer, opts Options) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	if opts.Addr == "" {
		opts.Addr = ":8000"
	}
	return &Server{agent: agent, direct: direct, opts: opts, templates: tmpl}, nil
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleWelcome)
	mux.HandleFunc("GET /ui", s.handleUI)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /agent-chat", s.handleAgentChat)

	return corsMiddleware(loggingMiddleware(mux))
}

// Start runs the HTTP server until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	writeTimeout := 300 * time.Second
	if s.opts.RequestTimeout > 0 {
		writeTimeout = s.opts.RequestTimeout + 10*time.Second
	}
	server := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
	}

	logger.Infof("courserag server starting on %s", s.opts.Addr)

	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
		case <-stopped:
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type chatRequestBody struct {
	Query string `json:"query"`
	Type  string `json:"type"`
}

func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": WelcomeMessage})
}

func (s *Server) handleUI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", nil); err != nil {
		logger.Errorf("rendering ui: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{"status": "ok"}
	if s.opts.IndexSize != nil {
		body["chunks"] = s.opts.IndexSize()
	}
	writeJSON(w, http.StatusOK, body)
}

// handleChat routes on the "type" field: "llm" goes straight to the model,
// anything else runs the agentic catalog search.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeChat(w, r)
	if !ok {
		return
	}
	typ := body.Type
	if typ == "" {
		typ = "rag"
	}
	req := entities.ChatRequest{Query: body.Query, Mode: entities.ParseMode(typ)}

	ctx, cancel := s.requestContext(r.Context())
	defer cancel()

	text, err := s.answer(ctx, req)
	s.respond(ctx, w, entities.ChatResponse{Query: body.Query, Type: typ}, text, err)
}

// handleAgentChat always runs the agentic catalog search.
func (s *Server) handleAgentChat(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeChat(w, r)
	if !ok {
		return
	}

	ctx, cancel := s.requestContext(r.Context())
	defer cancel()

	text, err := s.answer(ctx, entities.ChatRequest{Query: body.Query, Mode: entities.ModeGrounded})
	s.respond(ctx, w, entities.ChatResponse{Query: body.Query, Type: "agent"}, text, err)
}

func (s *Server) answer(ctx context.Context, req entities.ChatRequest) (string, error) {
	if req.Mode == entities.ModeDirectLLM {
		ans, err := s.direct.AnswerInLanguage(ctx, req.Query)
		if err != nil {
			return "", err
		}
		metrics.IncOutcome(entities.ModeDirectLLM.String())
		logger.Debugf("direct answer translated to %s", ans.Language)
		return ans.Text, nil
	}

	out, err := s.agent.Answer(ctx, req.Query)
	if err != nil {
		return "", err
	}
	metrics.IncOutcome(string(out.Source))
	logger.Debugf("agentic search outcome: %s", out.Source)
	return out.Text, nil
}

func (s *Server) respond(ctx context.Context, w http.ResponseWriter, resp entities.ChatResponse, text string, err error) {
	if err == nil {
		resp.Response = text
		writeJSON(w, http.StatusOK, resp)
		return
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = &TimeoutError{After: s.opts.RequestTimeout, Err: err}
	}
	f := classify(err)
	metrics.IncFailure(f.kind)
	logger.Warnf("%s request failed: %v", f.kind, err)

	if f.degradable && s.opts.DegradeErrors {
		resp.Response = f.message
		writeJSON(w, http.StatusOK, resp)
		return
	}
	writeJSON(w, f.status, map[string]string{"detail": f.message})
}

func (s *Server) requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	if s.opts.RequestTimeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, s.opts.RequestTimeout)
}

func decodeChat(w http.ResponseWriter, r *http.Request) (chatRequestBody, bool) {
	var body chatRequestBody
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid JSON body: " + err.Error()})
		return body, false
	}
	if strings.TrimSpace(body.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "query must not be empty"})
		return body, false
	}
	return body, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("encoding response: %v", err)
	}
}
