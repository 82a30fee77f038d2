// Package provider implements RPC provider interfaces.
//
// This package contains:
//   - Provider interface: core abstraction for node endpoints
//   - HTTPProvider: JSON-RPC and REST over HTTP
//   - ProviderMonitor: health and rate tracking
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"time"
)

// Operation represents a node call to execute.
// It abstracts JSON-RPC and REST so retry logic can treat both alike.
type Operation struct {
	// Name is the JSON-RPC method (e.g. "eth_getBlockByHash") or, for REST,
	// the path relative to the endpoint (e.g. "blocks/0x00...").
	Name string

	// Params for JSON-RPC calls ([]any), or the request body for REST.
	Params any

	// IsREST indicates if this is a REST API call instead of JSON-RPC.
	IsREST bool

	// RESTMethod specifies the HTTP method for REST calls (e.g., "GET", "POST").
	RESTMethod string
}

// Provider defines the core interface for a node endpoint.
type Provider interface {
	// GetName returns provider identifier (e.g., "testnet")
	GetName() string

	// GetHealth returns current health metrics
	GetHealth() HealthStatus

	// Execute performs the operation and returns the raw JSON result.
	// A JSON null result is returned as-is; callers decide what it means.
	Execute(ctx context.Context, op Operation) (json.RawMessage, error)

	// Close cleans up resources
	Close() error
}

// HealthStatus represents the health state of a provider.
type HealthStatus struct {
	Available     bool          `json:"available"`
	Latency       time.Duration `json:"latency"`
	ErrorRate     float64       `json:"error_rate"`
	LastSuccessAt time.Time     `json:"last_success_at"`
	LastFailureAt time.Time     `json:"last_failure_at"`
	MonitorStats  *MonitorStats `json:"monitor_stats,omitempty"`
}

// IsNull reports whether a raw result is absent or JSON null.
func IsNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || string(trimmed) == "null"
}
