package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/tracer/internal/core/domain"
	"github.com/vietddude/tracer/internal/indexing/analyzer"
	"github.com/vietddude/tracer/internal/indexing/health"
	"github.com/vietddude/tracer/internal/indexing/match"
	"github.com/vietddude/tracer/internal/infra/chain"
)

const (
	blockID   = "0x0036d78c68f63447a69d8f72e590dca4aa7061fd9781c46032ffb7124ff4d024"
	energy    = "0x0000000000000000000000000000456e65726779"
	authority = "0x0000000000000000000000417574686f72697479"
	sender    = "0xaa7e4fe8f0af2930acd3ec9689ec6e23d974584a"
	recipient = "0xd015d91b42bed5feaf242082b11b83b431abbf4f"
)

type fakeChain struct {
	blockErr error
}

func (f *fakeChain) GetBlock(ctx context.Context, id domain.BlockID) (*domain.Block, error) {
	if f.blockErr != nil {
		return nil, f.blockErr
	}
	if id != blockID {
		return nil, chain.ErrBlockNotFound
	}
	return &domain.Block{ID: id, Transactions: []string{"0x01", "0x02"}}, nil
}

func (f *fakeChain) GetReceipt(ctx context.Context, txID string) (*domain.Receipt, error) {
	switch txID {
	case "0x01":
		return &domain.Receipt{
			TxID:      txID,
			Events:    []domain.Event{{Address: energy, Topics: []string{}}},
			Transfers: []domain.Transfer{{Sender: sender, Recipient: recipient, Amount: "0x1"}},
		}, nil
	default:
		return &domain.Receipt{
			TxID:   txID,
			Events: []domain.Event{{Address: authority, Topics: []string{}}},
		}, nil
	}
}

type fakeMonitor struct {
	status health.SystemStatus
}

func (f *fakeMonitor) CheckHealth(ctx context.Context) *health.HealthReport {
	return &health.HealthReport{
		SystemStatus: f.status,
		Nodes:        map[string]health.NodeHealth{"testnet": {Name: "testnet", Status: f.status}},
	}
}

func newTestServer(c chain.Client, filter match.Config) *Server {
	a := analyzer.New(c, filter)
	return NewServer(a, &fakeMonitor{status: health.StatusHealthy}, filter, 0)
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) domain.BlockResult {
	t.Helper()
	var result domain.BlockResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	return result
}

func TestAnalysis_DefaultFilter(t *testing.T) {
	s := newTestServer(&fakeChain{}, match.DefaultConfig())

	rec := get(t, s, "/blocks/"+blockID+"/analysis")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	result := decodeResult(t, rec)
	assert.Equal(t, domain.BlockID(blockID), result.BlockID)
	assert.Len(t, result.Events, 2)
	assert.Len(t, result.Transfers, 1)
}

func TestAnalysis_QueryOverrides(t *testing.T) {
	s := newTestServer(&fakeChain{}, match.DefaultConfig())

	rec := get(t, s, "/blocks/"+blockID+"/analysis?contracts="+energy+"&address="+recipient)
	require.Equal(t, http.StatusOK, rec.Code)

	result := decodeResult(t, rec)
	require.Len(t, result.Events, 1)
	assert.Equal(t, energy, result.Events[0].Address)
	assert.Len(t, result.Transfers, 1)

	rec = get(t, s, "/blocks/"+blockID+"/analysis?event=false&transfer=false")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"blockId":"`+blockID+`","events":[],"transfers":[]}`, rec.Body.String())
}

func TestAnalysis_QueryListForms(t *testing.T) {
	s := newTestServer(&fakeChain{}, match.DefaultConfig())

	rec := get(t, s, "/blocks/"+blockID+"/analysis?contracts="+energy+","+authority)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeResult(t, rec).Events, 2)

	rec = get(t, s, "/blocks/"+blockID+"/analysis?contracts="+energy+"&contracts="+authority)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeResult(t, rec).Events, 2)
}

func TestAnalysis_ConfiguredFilterIsDefault(t *testing.T) {
	s := newTestServer(&fakeChain{}, match.NewConfig(match.WithoutTransfers()))

	rec := get(t, s, "/blocks/"+blockID+"/analysis")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeResult(t, rec).Transfers)

	rec = get(t, s, "/blocks/"+blockID+"/analysis?transfer=true")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeResult(t, rec).Transfers, 1)
}

func TestAnalysis_BadBoolean(t *testing.T) {
	s := newTestServer(&fakeChain{}, match.DefaultConfig())

	rec := get(t, s, "/blocks/"+blockID+"/analysis?event=maybe")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid event value")
}

func TestAnalysis_NotFound(t *testing.T) {
	s := newTestServer(&fakeChain{}, match.DefaultConfig())

	rec := get(t, s, "/blocks/0xdead/analysis")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"block not found"}`, rec.Body.String())
}

func TestAnalysis_ChainErrorIsBadGateway(t *testing.T) {
	s := newTestServer(&fakeChain{
		blockErr: &chain.ChainError{Op: "get block", Target: blockID, Err: errors.New("http 500: boom")},
	}, match.DefaultConfig())

	rec := get(t, s, "/blocks/"+blockID+"/analysis")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRequestID_Echoed(t *testing.T) {
	s := newTestServer(&fakeChain{}, match.DefaultConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}

func TestHealth(t *testing.T) {
	a := analyzer.New(&fakeChain{}, match.DefaultConfig())

	healthy := NewServer(a, &fakeMonitor{status: health.StatusDegraded}, match.DefaultConfig(), 0)
	rec := get(t, healthy, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"degraded"}`, rec.Body.String())

	critical := NewServer(a, &fakeMonitor{status: health.StatusCritical}, match.DefaultConfig(), 0)
	rec = get(t, critical, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = get(t, critical, "/health/detailed")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"testnet"`)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(&fakeChain{}, match.DefaultConfig())

	_ = get(t, s, "/blocks/"+blockID+"/analysis")
	rec := get(t, s, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tracer_blocks_analyzed_total")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList([]string{"a, b", "c", ""}))
	assert.Nil(t, splitList([]string{""}))
}
