package rpc

import (
	"net/http"

	"github.com/vietddude/tracer/internal/infra/rpc/provider"
)

// NewHTTPOperation builds a JSON-RPC call. params must be nil or []any.
func NewHTTPOperation(method string, params any) Operation {
	return provider.Operation{Name: method, Params: params}
}

// NewRESTOperation builds a REST call against a path relative to the
// provider endpoint. An empty method means GET; body is sent as JSON
// when non-nil.
func NewRESTOperation(path string, method string, body any) Operation {
	if method == "" {
		method = http.MethodGet
	}
	return provider.Operation{
		Name:       path,
		Params:     body,
		IsREST:     true,
		RESTMethod: method,
	}
}
