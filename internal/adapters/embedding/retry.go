package embedding

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/0xcro3dile/courserag/internal/domain/ports"
	"github.com/0xcro3dile/courserag/internal/infrastructure/logger"
)

// RetryingEmbedder retries a remote embedder with exponential backoff. It is
// meant for offline index builds, where a rate-limited batch should not
// abort the whole run.
type RetryingEmbedder struct {
	inner    ports.EmbeddingService
	attempts uint
	delay    time.Duration
}

// NewRetryingEmbedder wraps inner; attempts counts the first try.
func NewRetryingEmbedder(inner ports.EmbeddingService, attempts uint, delay time.Duration) *RetryingEmbedder {
	if attempts == 0 {
		attempts = 3
	}
	if delay <= 0 {
		delay = time.Second
	}
	return &RetryingEmbedder{inner: inner, attempts: attempts, delay: delay}
}

// Embed embeds one text.
func (r *RetryingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return retry.DoWithData(func() ([]float32, error) {
		return r.inner.Embed(ctx, text)
	}, r.options(ctx)...)
}

// EmbedBatch embeds texts, retrying the whole batch on failure.
func (r *RetryingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return retry.DoWithData(func() ([][]float32, error) {
		return r.inner.EmbedBatch(ctx, texts)
	}, r.options(ctx)...)
}

func (r *RetryingEmbedder) options(ctx context.Context) []retry.Option {
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warnf("embedding attempt %d failed: %v", n+1, err)
		}),
	}
}
