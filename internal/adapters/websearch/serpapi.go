// Package websearch provides the ports.WebSearcher adapter for SerpAPI.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/0xcro3dile/courserag/internal/domain/ports"
	"github.com/0xcro3dile/courserag/internal/infrastructure/logger"
)

// DefaultEndpoint is SerpAPI's public host.
const DefaultEndpoint = "https://serpapi.com"

// SerpAPISearcher queries Google through SerpAPI. One Search is one request.
type SerpAPISearcher struct {
	endpoint string
	apiKey   string
	engine   string
	client   *http.Client
}

// NewSerpAPISearcher creates a searcher. An empty apiKey yields a searcher
// that reports HasCredential() == false.
func NewSerpAPISearcher(endpoint, apiKey string, timeout time.Duration) *SerpAPISearcher {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &SerpAPISearcher{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		engine:   "google",
		client:   &http.Client{Timeout: timeout},
	}
}

// HasCredential reports whether an API key is configured.
func (s *SerpAPISearcher) HasCredential() bool {
	return strings.TrimSpace(s.apiKey) != ""
}

type serpResponse struct {
	Error          string `json:"error"`
	OrganicResults []struct {
		Position int    `json:"position"`
		Title    string `json:"title"`
		Link     string `json:"link"`
		Snippet  string `json:"snippet"`
	} `json:"organic_results"`
}

// Search returns organic results in provider rank order.
func (s *SerpAPISearcher) Search(ctx context.Context, query string) ([]ports.WebResult, error) {
	if !s.HasCredential() {
		return nil, fmt.Errorf("serpapi key not configured")
	}

	u, err := url.Parse(s.endpoint + "/search.json")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("engine", s.engine)
	q.Set("q", query)
	q.Set("api_key", s.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling serpapi: %w", err)
	}
	defer resp.Body.Close()

	var body serpResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if body.Error != "" {
			return nil, fmt.Errorf("serpapi returned status %d: %s", resp.StatusCode, body.Error)
		}
		return nil, fmt.Errorf("serpapi returned status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decoding serpapi response: %w", decodeErr)
	}
	if body.Error != "" && len(body.OrganicResults) == 0 && !isEmptyResultError(body.Error) {
		return nil, fmt.Errorf("serpapi: %s", body.Error)
	}

	results := make([]ports.WebResult, 0, len(body.OrganicResults))
	for _, r := range body.OrganicResults {
		results = append(results, ports.WebResult{Title: r.Title, URL: r.Link, Snippet: r.Snippet})
	}
	logger.Debugf("serpapi returned %d organic results", len(results))
	return results, nil
}

// isEmptyResultError matches SerpAPI's "no results" notice, which arrives as
// an error field on a successful response.
func isEmptyResultError(msg string) bool {
	return strings.Contains(msg, "hasn't returned any results")
}
