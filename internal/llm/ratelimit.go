package llm

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/vpepe/twentyq/internal/domain"
)

// RateLimited wraps a client so that outbound completions respect a global
// requests-per-second budget. Workers scoring questions in parallel all share
// the same limiter, which caps outstanding external calls.
type RateLimited struct {
	inner   domain.LLMClient
	limiter *rate.Limiter
}

// NewRateLimited returns the inner client unchanged when rps is zero.
func NewRateLimited(inner domain.LLMClient, rps float64, burst int) domain.LLMClient {
	if rps <= 0 {
		return inner
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (c *RateLimited) Complete(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return c.inner.Complete(ctx, prompt)
}
