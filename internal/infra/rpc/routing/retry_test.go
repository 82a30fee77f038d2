package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"syscall"
	"testing"
	"time"

	"github.com/vietddude/tracer/internal/infra/rpc/provider"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err    error
		expect ErrorAction
	}{
		{&provider.ThrottleError{Code: 429, Message: "rate limited"}, ActionThrottled},
		{&provider.ThrottleError{Code: 403, Message: "ip blocked"}, ActionThrottled},
		{fmt.Errorf("thor blocks/best via testnet: %w", &provider.ThrottleError{Message: "quota exceeded"}), ActionThrottled},
		{&provider.StatusError{Code: 429, Body: "slow down"}, ActionThrottled},
		{&provider.RPCError{Code: -32600, Message: "invalid request"}, ActionFatal},
		{&provider.RPCError{Code: -32601, Message: "method not found"}, ActionFatal},
		{fmt.Errorf("wrapped: %w", &provider.RPCError{Code: -32700, Message: "parse error"}), ActionFatal},
		{&provider.RPCError{Code: -32000, Message: "header not found"}, ActionRetry},
		{&provider.StatusError{Code: 400, Body: "id: invalid length"}, ActionFatal},
		{&provider.StatusError{Code: 502, Body: "bad gateway"}, ActionRetry},
		{context.Canceled, ActionFatal},
		{errors.New("connection reset by peer"), ActionRetry},
		{errors.New("timeout"), ActionRetry},
		// untyped text is not trusted, digits may come from hashes
		{errors.New("429 Too Many Requests"), ActionRetry},
		{errors.New("500 Internal Server Error"), ActionRetry},
	}

	for _, tt := range tests {
		if got := ClassifyError(tt.err); got != tt.expect {
			t.Errorf("ClassifyError(%q) = %v, want %v", tt.err, got, tt.expect)
		}
	}
}

func TestClassifyError_DigitsInURLAreNotThrottling(t *testing.T) {
	// a receipt path whose tx hash contains 403 and 429
	reset := &url.Error{
		Op:  "Get",
		URL: "https://node.example/transactions/0x9e1f4030c1b429aa7f3e0b2d5c6a8e4f1b0d9c2e7a3f5b8d4c6e1a0f2b4d403c/receipt",
		Err: syscall.ECONNRESET,
	}
	err := fmt.Errorf("http call: %w", reset)

	if got := ClassifyError(err); got != ActionRetry {
		t.Fatalf("ClassifyError(%q) = %v, want retry", err, got)
	}

	p := &MockProvider{failures: 1, err: err}
	if _, err := ExecuteWithRetry(context.Background(), p, provider.Operation{Name: "m"}, fastRetry); err != nil {
		t.Fatalf("expected the transient error to be retried, got %v", err)
	}
	if p.callCount != 2 {
		t.Errorf("expected 2 calls, got %d", p.callCount)
	}
}

// MockProvider fails a fixed number of times before succeeding.
type MockProvider struct {
	failures  int
	err       error
	callCount int
}

func (m *MockProvider) GetName() string                  { return "mock" }
func (m *MockProvider) GetHealth() provider.HealthStatus { return provider.HealthStatus{Available: true} }
func (m *MockProvider) Close() error                     { return nil }

func (m *MockProvider) Execute(ctx context.Context, op provider.Operation) (json.RawMessage, error) {
	m.callCount++
	if m.callCount <= m.failures {
		return nil, m.err
	}
	return json.RawMessage(`"ok"`), nil
}

var fastRetry = RetryConfig{
	MaxAttempts:     3,
	InitialDelay:    time.Millisecond,
	MaxDelay:        5 * time.Millisecond,
	BackoffMultiple: 2,
}

func TestExecuteWithRetry_RecoversFromTransientError(t *testing.T) {
	p := &MockProvider{failures: 2, err: errors.New("connection reset by peer")}

	result, err := ExecuteWithRetry(context.Background(), p, provider.Operation{Name: "m"}, fastRetry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(result) != `"ok"` {
		t.Errorf("unexpected result %s", result)
	}
	if p.callCount != 3 {
		t.Errorf("expected 3 calls, got %d", p.callCount)
	}
}

func TestExecuteWithRetry_GivesUp(t *testing.T) {
	cause := errors.New("connection refused")
	p := &MockProvider{failures: 10, err: cause}

	_, err := ExecuteWithRetry(context.Background(), p, provider.Operation{Name: "m"}, fastRetry)
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if p.callCount != fastRetry.MaxAttempts {
		t.Errorf("expected %d calls, got %d", fastRetry.MaxAttempts, p.callCount)
	}
}

func TestExecuteWithRetry_StopsOnFatal(t *testing.T) {
	p := &MockProvider{failures: 10, err: &provider.StatusError{Code: 400, Body: "bad id"}}

	_, err := ExecuteWithRetry(context.Background(), p, provider.Operation{Name: "m"}, fastRetry)
	if err == nil {
		t.Fatal("expected error")
	}
	if p.callCount != 1 {
		t.Errorf("expected a single call, got %d", p.callCount)
	}
}

func TestExecuteWithRetry_StopsOnThrottle(t *testing.T) {
	p := &MockProvider{failures: 10, err: &provider.ThrottleError{Code: 429, Message: "rate limited"}}

	_, err := ExecuteWithRetry(context.Background(), p, provider.Operation{Name: "m"}, fastRetry)
	if err == nil {
		t.Fatal("expected error")
	}
	if p.callCount != 1 {
		t.Errorf("expected a single call, got %d", p.callCount)
	}
}

func TestExecuteWithRetry_HonoursCancellation(t *testing.T) {
	p := &MockProvider{failures: 10, err: errors.New("connection reset")}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	slow := fastRetry
	slow.InitialDelay = time.Hour
	slow.MaxDelay = time.Hour

	_, err := ExecuteWithRetry(ctx, p, provider.Operation{Name: "m"}, slow)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCalculateBackoff(t *testing.T) {
	cfg := RetryConfig{InitialDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond, BackoffMultiple: 2}

	if got := calculateBackoff(0, cfg); got != 100*time.Millisecond {
		t.Errorf("attempt 0: got %v", got)
	}
	if got := calculateBackoff(1, cfg); got != 200*time.Millisecond {
		t.Errorf("attempt 1: got %v", got)
	}
	if got := calculateBackoff(5, cfg); got != 300*time.Millisecond {
		t.Errorf("attempt 5: got %v", got)
	}
}
