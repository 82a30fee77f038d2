// Package rpc provides a resilient node client for blockchain networks.
//
// It offers:
//   - JSON-RPC 2.0 and REST over one HTTP provider
//   - Retry with exponential backoff and error classification
//   - Throttle (429/403) detection and health monitoring
//
// # Quick Start
//
//	p := rpc.NewHTTPProvider("testnet", "https://sync-testnet.vechain.org", 10*time.Second)
//	client := rpc.NewClient("thor", p, rpc.DefaultRetryConfig)
//
//	raw, err := client.Execute(ctx, rpc.NewRESTOperation("blocks/best", "GET", nil))
//
// # Package Structure
//
//   - provider/ - HTTPProvider and monitoring
//   - routing/  - retry and error classification
//
// Most types are re-exported at the root level for convenience.
package rpc

import (
	"time"

	"github.com/vietddude/tracer/internal/infra/rpc/provider"
	"github.com/vietddude/tracer/internal/infra/rpc/routing"
)

// Provider is the core interface for node endpoints.
type Provider = provider.Provider

// HTTPProvider implements Provider for JSON-RPC and REST over HTTP.
type HTTPProvider = provider.HTTPProvider

// ProviderStatus represents the health state of a provider.
type ProviderStatus = provider.ProviderStatus

// MonitorStats holds monitoring statistics for a provider.
type MonitorStats = provider.MonitorStats

// HealthStatus represents the health state of a provider.
type HealthStatus = provider.HealthStatus

// Operation represents a node call to execute (transport-agnostic).
type Operation = provider.Operation

// StatusError is a non-2xx HTTP reply.
type StatusError = provider.StatusError

// ThrottleError is a rate limit or block signalled by the node.
type ThrottleError = provider.ThrottleError

// RPCError is a JSON-RPC error object returned by the node.
type RPCError = provider.RPCError

// Provider status constants
const (
	StatusHealthy   = provider.StatusHealthy
	StatusDegraded  = provider.StatusDegraded
	StatusThrottled = provider.StatusThrottled
	StatusBlocked   = provider.StatusBlocked
)

// RetryConfig defines retry behavior.
type RetryConfig = routing.RetryConfig

// DefaultRetryConfig provides sensible retry defaults.
var DefaultRetryConfig = routing.DefaultRetryConfig

// IsNull reports whether a raw result is absent or JSON null.
var IsNull = provider.IsNull

// NewHTTPProvider creates a new HTTP-based provider.
func NewHTTPProvider(name, endpoint string, timeout time.Duration) *HTTPProvider {
	return provider.NewHTTPProvider(name, endpoint, timeout)
}
