package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPProvider implements Provider for JSON-RPC and REST over HTTP.
type HTTPProvider struct {
	*BaseProvider

	endpoint   string
	httpClient *http.Client
}

// NewHTTPProvider creates a new HTTP-based provider.
func NewHTTPProvider(name, endpoint string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		BaseProvider: NewBaseProvider(name),
		endpoint:     strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Execute dispatches op as a REST request or a JSON-RPC call.
func (p *HTTPProvider) Execute(ctx context.Context, op Operation) (json.RawMessage, error) {
	if op.IsREST {
		return p.rest(ctx, op)
	}

	var params []any
	switch v := op.Params.(type) {
	case nil:
	case []any:
		params = v
	default:
		return nil, fmt.Errorf("json-rpc params for %s must be []any, got %T", op.Name, op.Params)
	}
	return p.Call(ctx, op.Name, params)
}

// Call makes a single JSON-RPC 2.0 call.
func (p *HTTPProvider) Call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}
	reqBody := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
		"id":      1,
	}

	body, latency, err := p.send(ctx, http.MethodPost, p.endpoint, reqBody)
	if err != nil {
		return nil, err
	}

	var rpcResp struct {
		Result json.RawMessage `json:"result"`
		Error  *RPCError       `json:"error"`
	}
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		p.RecordFailure()
		return nil, fmt.Errorf("parse response: %w", err)
	}

	if rpcResp.Error != nil {
		p.RecordFailure()
		if p.Monitor.DetectThrottlePattern(rpcResp.Error.Message) {
			return nil, &ThrottleError{Message: rpcResp.Error.Message}
		}
		return nil, rpcResp.Error
	}

	p.RecordSuccess(latency)
	return rpcResp.Result, nil
}

// Close cleans up resources.
func (p *HTTPProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}

func (p *HTTPProvider) rest(ctx context.Context, op Operation) (json.RawMessage, error) {
	method := op.RESTMethod
	if method == "" {
		method = http.MethodGet
	}
	url := p.endpoint + "/" + strings.TrimLeft(op.Name, "/")

	body, latency, err := p.send(ctx, method, url, op.Params)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		p.RecordFailure()
		return nil, fmt.Errorf("invalid json from %s", op.Name)
	}

	p.RecordSuccess(latency)
	return json.RawMessage(body), nil
}

// send performs one HTTP round trip and applies throttle detection.
// A nil payload sends no body.
func (p *HTTPProvider) send(ctx context.Context, method, url string, payload any) ([]byte, time.Duration, error) {
	start := time.Now()

	if status := p.Monitor.CheckProviderStatus(); status == StatusThrottled || status == StatusBlocked {
		return nil, 0, &ThrottleError{
			Message:    fmt.Sprintf("provider %s", status),
			RetryAfter: p.Monitor.GetRetryAfter(),
		}
	}

	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			p.RecordFailure()
			return nil, 0, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		p.RecordFailure()
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.RecordFailure()
		return nil, 0, fmt.Errorf("http call: %w", err)
	}
	defer resp.Body.Close()

	latency := time.Since(start)

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := resp.Header.Get("Retry-After")
		p.Monitor.RecordThrottle(http.StatusTooManyRequests, retryAfter)
		p.RecordFailure()
		return nil, 0, &ThrottleError{
			Code:       http.StatusTooManyRequests,
			Message:    "rate limited",
			RetryAfter: p.Monitor.GetRetryAfter(),
		}
	}

	if resp.StatusCode == http.StatusForbidden {
		p.Monitor.RecordThrottle(http.StatusForbidden, "")
		p.RecordFailure()
		return nil, 0, &ThrottleError{
			Code:       http.StatusForbidden,
			Message:    "ip blocked",
			RetryAfter: p.Monitor.GetRetryAfter(),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		p.RecordFailure()
		return nil, 0, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		p.RecordFailure()
		msg := strings.TrimSpace(string(body))
		if p.Monitor.DetectThrottlePattern(msg) {
			return nil, 0, &ThrottleError{Code: resp.StatusCode, Message: msg}
		}
		return nil, 0, &StatusError{Code: resp.StatusCode, Body: msg}
	}

	return body, latency, nil
}

// StatusError is a non-2xx HTTP reply that is not a throttle signal.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Code, e.Body)
}

// ThrottleError reports that the node refused work because of rate limits
// or an access block. Code is the HTTP status, or 0 when the signal came
// from a response message.
type ThrottleError struct {
	Code       int
	Message    string
	RetryAfter time.Duration
}

func (e *ThrottleError) Error() string {
	msg := "throttled: " + e.Message
	if e.Code != 0 {
		msg = fmt.Sprintf("throttled (%d): %s", e.Code, e.Message)
	}
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(", retry after %v", e.RetryAfter)
	}
	return msg
}

// RPCError is a JSON-RPC error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}
