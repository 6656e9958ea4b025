// Package translate provides the ports.Translator adapters.
package translate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultGoogleEndpoint is the keyless web translation endpoint.
const DefaultGoogleEndpoint = "https://translate.googleapis.com/translate_a/single"

// maxSegment keeps each request under the endpoint's size limit.
const maxSegment = 4500

// GoogleTranslator translates through Google's public gtx endpoint.
type GoogleTranslator struct {
	endpoint string
	client   *http.Client
}

// NewGoogleTranslator creates a translator; an empty endpoint uses the default.
func NewGoogleTranslator(endpoint string, timeout time.Duration) *GoogleTranslator {
	if endpoint == "" {
		endpoint = DefaultGoogleEndpoint
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &GoogleTranslator{endpoint: endpoint, client: &http.Client{Timeout: timeout}}
}

// Translate auto-detects the source and returns text in targetLang.
func (g *GoogleTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if targetLang == "" {
		return "", fmt.Errorf("no target language")
	}
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	var sb strings.Builder
	for _, seg := range segments(text, maxSegment) {
		out, err := g.translateSegment(ctx, seg, targetLang)
		if err != nil {
			return "", err
		}
		sb.WriteString(out)
	}
	return sb.String(), nil
}

func (g *GoogleTranslator) translateSegment(ctx context.Context, text, targetLang string) (string, error) {
	u, err := url.Parse(g.endpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("client", "gtx")
	q.Set("sl", "auto")
	q.Set("tl", targetLang)
	q.Set("dt", "t")
	u.RawQuery = q.Encode()

	form := url.Values{"q": {text}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling translate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading translate response: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("translate returned invalid JSON")
	}

	// Response shape: [[["translated","source",...], ...], null, "en", ...]
	sentences := gjson.GetBytes(body, "0")
	if !sentences.IsArray() {
		return "", fmt.Errorf("unexpected translate response shape")
	}

	var sb strings.Builder
	for _, s := range sentences.Array() {
		if part := s.Get("0"); part.Type == gjson.String {
			sb.WriteString(part.String())
		}
	}
	return sb.String(), nil
}

// segments splits text into pieces of at most n runes, preferring to cut
// after a newline or sentence end.
func segments(text string, n int) []string {
	runes := []rune(text)
	var out []string
	for len(runes) > n {
		cut := n
		for i := n; i > n/2; i-- {
			if r := runes[i-1]; r == '\n' || r == '.' || r == '!' || r == '?' || r == '।' {
				cut = i
				break
			}
		}
		out = append(out, string(runes[:cut]))
		runes = runes[cut:]
	}
	return append(out, string(runes))
}
