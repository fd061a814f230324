package anthropic

import (
	"context"
	"errors"

	sdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/leadscope/lead-cli/internal/resilience"
)

// retryClient decorates a Client with retry on transient provider failures.
// Rate limits and overload responses back off and retry; schema-level and
// auth errors pass straight through.
type retryClient struct {
	inner Client
	cfg   resilience.RetryConfig
}

// WithRetry wraps a client with the default retry policy.
func WithRetry(inner Client) Client {
	cfg := resilience.DefaultRetryConfig()
	cfg.ShouldRetry = isRetryable
	cfg.OnRetry = resilience.RetryLogger("anthropic", "create_message")
	return &retryClient{inner: inner, cfg: cfg}
}

func (c *retryClient) CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	return resilience.DoVal(ctx, c.cfg, func(ctx context.Context) (*MessageResponse, error) {
		return c.inner.CreateMessage(ctx, req)
	})
}

// isRetryable checks the SDK's API error status before falling back to the
// generic transient heuristics.
func isRetryable(err error) bool {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return resilience.IsTransientHTTPStatus(apiErr.StatusCode)
	}
	return resilience.IsTransient(err)
}
