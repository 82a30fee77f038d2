package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testBlockID = "0x0036d78c68f63447a69d8f72e590dca4aa7061fd9781c46032ffb7124ff4d024"

func TestHTTPProvider_ExecuteREST(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/blocks/"+testBlockID {
			t.Errorf("expected path /blocks/%s, got %s", testBlockID, r.URL.Path)
			http.Error(w, "invalid path", http.StatusBadRequest)
			return
		}
		if r.Method != http.MethodGet {
			t.Errorf("expected method GET, got %s", r.Method)
		}
		if r.ContentLength > 0 {
			t.Errorf("expected no body on GET, got %d bytes", r.ContentLength)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":           testBlockID,
			"number":       3594124,
			"transactions": []string{"0xaa"},
		})
	}))
	defer server.Close()

	p := NewHTTPProvider("thor-mock", server.URL+"/", 5*time.Second)

	op := Operation{
		Name:       "blocks/" + testBlockID,
		IsREST:     true,
		RESTMethod: http.MethodGet,
	}

	result, err := p.Execute(context.Background(), op)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var data struct {
		ID     string `json:"id"`
		Number uint64 `json:"number"`
	}
	if err := json.Unmarshal(result, &data); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if data.ID != testBlockID {
		t.Errorf("expected id %s, got %s", testBlockID, data.ID)
	}
	if data.Number != 3594124 {
		t.Errorf("expected number 3594124, got %d", data.Number)
	}
}

func TestHTTPProvider_ExecuteREST_Null(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("null\n"))
	}))
	defer server.Close()

	p := NewHTTPProvider("thor-mock", server.URL, 5*time.Second)

	result, err := p.Execute(context.Background(), Operation{Name: "blocks/0x01", IsREST: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !IsNull(result) {
		t.Errorf("expected null result, got %s", result)
	}
}

func TestHTTPProvider_ExecuteREST_WithBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %q", ct)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode body: %v", err)
			return
		}
		if body["range"] == nil {
			t.Errorf("expected range in body, got %v", body)
		}

		_ = json.NewEncoder(w).Encode([]any{})
	}))
	defer server.Close()

	p := NewHTTPProvider("thor-mock", server.URL, 5*time.Second)

	op := Operation{
		Name:       "logs/event",
		IsREST:     true,
		RESTMethod: http.MethodPost,
		Params:     map[string]any{"range": map[string]any{"unit": "block", "from": 1, "to": 2}},
	}

	if _, err := p.Execute(context.Background(), op); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHTTPProvider_ExecuteREST_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "id: invalid length", http.StatusBadRequest)
	}))
	defer server.Close()

	p := NewHTTPProvider("thor-mock", server.URL, 5*time.Second)

	_, err := p.Execute(context.Background(), Operation{Name: "blocks/0x01", IsREST: true})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", se.Code)
	}
	if se.Body != "id: invalid length" {
		t.Errorf("unexpected body %q", se.Body)
	}
}

func TestHTTPProvider_Throttled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := NewHTTPProvider("thor-mock", server.URL, 5*time.Second)

	_, err := p.Execute(context.Background(), Operation{Name: "blocks/best", IsREST: true})
	if err == nil {
		t.Fatal("expected error on 429")
	}
	var te *ThrottleError
	if !errors.As(err, &te) || te.Code != http.StatusTooManyRequests {
		t.Fatalf("expected ThrottleError with 429, got %v", err)
	}
	if te.RetryAfter <= 25*time.Second || te.RetryAfter > 30*time.Second {
		t.Errorf("expected retry after about 30s, got %v", te.RetryAfter)
	}
	if got := p.Monitor.GetStats().ThrottleCount429; got != 1 {
		t.Errorf("expected one recorded 429, got %d", got)
	}
	if p.GetHealth().LastFailureAt.IsZero() {
		t.Error("expected failure to be recorded")
	}
}
