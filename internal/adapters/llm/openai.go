package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/0xcro3dile/courserag/internal/infrastructure/logger"
)

// GeminiBaseURL is Google's OpenAI-compatible endpoint.
const GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// OpenAILLMAdapter implements ports.LLMService against any
// OpenAI-compatible chat completions endpoint (OpenAI, Gemini, vLLM).
type OpenAILLMAdapter struct {
	client openai.Client
	model  string
}

// NewOpenAILLMAdapter creates a chat adapter. Retries are disabled so one
// Generate call is one upstream request.
func NewOpenAILLMAdapter(apiKey, baseURL, model string) *OpenAILLMAdapter {
	if baseURL == "" {
		baseURL = GeminiBaseURL
	}
	if model == "" {
		model = "gemini-2.5-pro"
	}
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: 300 * time.Second}),
	)
	return &OpenAILLMAdapter{client: client, model: model}
}

// Generate sends prompt as a single user message.
func (a *OpenAILLMAdapter) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModel(a.model),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("%s returned status %d: %w", a.model, apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("calling %s: %w", a.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", a.model)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%s returned an empty reply (finish reason %q)", a.model, resp.Choices[0].FinishReason)
	}

	logger.Debugf("%s answered in %s", a.model, time.Since(start))
	return content, nil
}
