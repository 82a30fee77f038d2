package chain

import (
	"context"
	"errors"
	"time"

	"github.com/vietddude/tracer/internal/core/domain"
	"github.com/vietddude/tracer/internal/indexing/metrics"
)

// InstrumentedClient records prometheus metrics around another Client.
type InstrumentedClient struct {
	next  Client
	chain string
}

// Instrument wraps next with RPC metrics labelled by chain name.
func Instrument(next Client, chainName string) *InstrumentedClient {
	return &InstrumentedClient{next: next, chain: chainName}
}

func (c *InstrumentedClient) GetBlock(ctx context.Context, id domain.BlockID) (*domain.Block, error) {
	start := time.Now()
	block, err := c.next.GetBlock(ctx, id)
	// a missing block is an answer, not a failure
	c.observe("get_block", start, err, ErrBlockNotFound)
	return block, err
}

func (c *InstrumentedClient) GetReceipt(ctx context.Context, txID string) (*domain.Receipt, error) {
	start := time.Now()
	receipt, err := c.next.GetReceipt(ctx, txID)
	c.observe("get_receipt", start, err, nil)
	return receipt, err
}

func (c *InstrumentedClient) observe(method string, start time.Time, err, ignore error) {
	metrics.RPCCallsTotal.WithLabelValues(c.chain, method).Inc()
	metrics.RPCLatency.WithLabelValues(c.chain, method).Observe(time.Since(start).Seconds())
	if err != nil && (ignore == nil || !errors.Is(err, ignore)) {
		metrics.RPCErrorsTotal.WithLabelValues(c.chain, method).Inc()
	}
}
