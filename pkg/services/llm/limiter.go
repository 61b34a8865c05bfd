package llm

import (
	"context"
	"fmt"

	"github.com/de-tools/viability/pkg/models/domain"
	"golang.org/x/time/rate"
)

// RateLimited bounds the request rate of a shared Generator across concurrent stages.
type RateLimited struct {
	next    Generator
	limiter *rate.Limiter
}

func NewRateLimited(next Generator, requestsPerSecond float64) Generator {
	if requestsPerSecond <= 0 {
		return next
	}
	burst := int(requestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

func (r *RateLimited) Generate(ctx context.Context, req Request) (Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return Response{}, fmt.Errorf("%w: rate limiter: %v", domain.ErrGeneration, err)
	}
	return r.next.Generate(ctx, req)
}
