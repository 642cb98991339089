package embedding

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimited paces calls to another provider. Ingestion embeds many
// documents back to back and would otherwise hit provider quotas.
type RateLimited struct {
	next    EmbeddingProvider
	limiter *rate.Limiter
}

// NewRateLimited allows perSecond calls per second with a burst of the same
// size. perSecond <= 0 returns next unchanged.
func NewRateLimited(next EmbeddingProvider, perSecond int) EmbeddingProvider {
	if perSecond <= 0 {
		return next
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), perSecond),
	}
}

func (r *RateLimited) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.next.Generate(ctx, text, taskType)
}
