package llm

import (
	"context"

	"golang.org/x/time/rate"
)

type limitedClient struct {
	inner   Client
	limiter *rate.Limiter
}

// Limited wraps a client with an RPM cap. Calls block until the limiter
// grants a slot or the context is cancelled.
func Limited(inner Client, rpm int) Client {
	return &limitedClient{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
	}
}

func (c *limitedClient) Generate(ctx context.Context, req Request) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return c.inner.Generate(ctx, req)
}
