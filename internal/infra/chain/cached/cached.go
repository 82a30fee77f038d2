// Package cached decorates a chain.Client with a Redis read-through cache.
//
// Known blocks and receipts never change once confirmed, so both are cached.
// Not-found answers and errors are never stored.
package cached

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vietddude/tracer/internal/core/domain"
	"github.com/vietddude/tracer/internal/indexing/metrics"
	"github.com/vietddude/tracer/internal/infra/chain"
)

// Store is the subset of the Redis client the cache needs.
type Store interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
}

type Client struct {
	next  chain.Client
	store Store
	chain string
	ttl   time.Duration
	log   *slog.Logger
}

func New(next chain.Client, store Store, chainName string, ttl time.Duration) *Client {
	return &Client{
		next:  next,
		store: store,
		chain: chainName,
		ttl:   ttl,
		log:   slog.Default().With("component", "cache", "chain", chainName),
	}
}

// BlockKey is case-insensitive in id, as block hashes are.
func BlockKey(chainName string, id domain.BlockID) string {
	return fmt.Sprintf("tracer:%s:block:%s", chainName, strings.ToLower(id.String()))
}

func ReceiptKey(chainName, txID string) string {
	return fmt.Sprintf("tracer:%s:receipt:%s", chainName, txID)
}

func (c *Client) GetBlock(ctx context.Context, id domain.BlockID) (*domain.Block, error) {
	key := BlockKey(c.chain, id)

	var block domain.Block
	if c.load(ctx, key, "block", &block) {
		return &block, nil
	}

	fresh, err := c.next.GetBlock(ctx, id)
	if err != nil || fresh == nil {
		return fresh, err
	}
	// Stored under the hash the node returned, so aliases such as "best"
	// or a block number always reach the node.
	c.save(ctx, BlockKey(c.chain, fresh.ID), fresh)
	return fresh, nil
}

func (c *Client) GetReceipt(ctx context.Context, txID string) (*domain.Receipt, error) {
	key := ReceiptKey(c.chain, txID)

	var receipt domain.Receipt
	if c.load(ctx, key, "receipt", &receipt) {
		return &receipt, nil
	}

	fresh, err := c.next.GetReceipt(ctx, txID)
	if err != nil {
		return nil, err
	}
	c.save(ctx, key, fresh)
	return fresh, nil
}

// load reports a hit. Store failures count as a miss.
func (c *Client) load(ctx context.Context, key, kind string, dst any) bool {
	found, err := c.store.GetJSON(ctx, key, dst)
	if err != nil {
		c.log.Warn("cache read failed", "key", key, "error", err)
	}
	if found && err == nil {
		metrics.CacheHits.WithLabelValues(c.chain, kind).Inc()
		return true
	}
	metrics.CacheMisses.WithLabelValues(c.chain, kind).Inc()
	return false
}

func (c *Client) save(ctx context.Context, key string, v any) {
	if err := c.store.SetJSON(ctx, key, v, c.ttl); err != nil {
		c.log.Warn("cache write failed", "key", key, "error", err)
	}
}
