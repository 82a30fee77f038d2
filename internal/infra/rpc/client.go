package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vietddude/tracer/internal/infra/rpc/routing"
)

// RPCClient is what chain clients depend on.
type RPCClient interface {
	Execute(ctx context.Context, op Operation) (json.RawMessage, error)
}

// Client executes operations against one provider with retry.
type Client struct {
	chain    string
	provider Provider
	retry    RetryConfig
}

// NewClient creates a client for the named chain.
func NewClient(chain string, p Provider, retry RetryConfig) *Client {
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryConfig
	}
	return &Client{chain: chain, provider: p, retry: retry}
}

// Execute runs op with retry and backoff.
func (c *Client) Execute(ctx context.Context, op Operation) (json.RawMessage, error) {
	result, err := routing.ExecuteWithRetry(ctx, c.provider, op, c.retry)
	if err != nil {
		return nil, fmt.Errorf("%s %s via %s: %w", c.chain, op.Name, c.provider.GetName(), err)
	}
	return result, nil
}

// Provider returns the underlying provider, for health reporting.
func (c *Client) Provider() Provider {
	return c.provider
}

// Close releases the provider's connections.
func (c *Client) Close() error {
	return c.provider.Close()
}
