// Package analyzer turns one block into the events and transfers a filter keeps.
//
// AnalyzeBlock resolves the block's transactions, fetches their receipts with
// bounded concurrency, then walks receipts in transaction order and keeps the
// items the Matcher accepts. A missing block yields a nil result and no error.
package analyzer

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vietddude/tracer/internal/core/domain"
	"github.com/vietddude/tracer/internal/indexing/match"
	"github.com/vietddude/tracer/internal/indexing/metrics"
	"github.com/vietddude/tracer/internal/infra/chain"
)

// DefaultConcurrency bounds in-flight receipt fetches.
const DefaultConcurrency = 5

// Analyzer filters the contents of single blocks.
type Analyzer struct {
	client      chain.Client
	matcher     *match.Matcher
	concurrency int
	chainName   string
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithConcurrency sets the number of concurrent receipt fetches.
// Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithChainName labels metrics with the chain name.
func WithChainName(name string) Option {
	return func(a *Analyzer) {
		a.chainName = name
	}
}

// New creates an Analyzer that applies cfg to every block.
func New(client chain.Client, cfg match.Config, opts ...Option) *Analyzer {
	a := &Analyzer{
		client:      client,
		matcher:     match.New(cfg),
		concurrency: DefaultConcurrency,
		chainName:   "default",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeBlock applies the Analyzer's filter to block id.
func (a *Analyzer) AnalyzeBlock(ctx context.Context, id domain.BlockID) (*domain.BlockResult, error) {
	return a.analyze(ctx, id, a.matcher)
}

// AnalyzeBlockWith applies cfg instead of the Analyzer's filter.
func (a *Analyzer) AnalyzeBlockWith(ctx context.Context, id domain.BlockID, cfg match.Config) (*domain.BlockResult, error) {
	return a.analyze(ctx, id, match.New(cfg))
}

func (a *Analyzer) analyze(ctx context.Context, id domain.BlockID, m *match.Matcher) (*domain.BlockResult, error) {
	start := time.Now()
	defer func() {
		metrics.AnalyzeDuration.WithLabelValues(a.chainName).Observe(time.Since(start).Seconds())
	}()

	txIDs, err := a.resolve(ctx, id)
	if errors.Is(err, chain.ErrBlockNotFound) {
		metrics.BlocksAnalyzed.WithLabelValues(a.chainName, metrics.OutcomeNotFound).Inc()
		return nil, nil
	}
	if err != nil {
		metrics.BlocksAnalyzed.WithLabelValues(a.chainName, metrics.OutcomeError).Inc()
		return nil, err
	}

	// nothing can match, so receipts are not needed
	if !m.EventsEnabled() && !m.TransfersEnabled() {
		metrics.BlocksAnalyzed.WithLabelValues(a.chainName, metrics.OutcomeFound).Inc()
		return domain.NewBlockResult(id), nil
	}

	receipts, err := a.fetchReceipts(ctx, txIDs)
	if err != nil {
		metrics.BlocksAnalyzed.WithLabelValues(a.chainName, metrics.OutcomeError).Inc()
		return nil, err
	}

	result := evaluate(id, receipts, m)

	metrics.BlocksAnalyzed.WithLabelValues(a.chainName, metrics.OutcomeFound).Inc()
	metrics.EventsMatched.WithLabelValues(a.chainName).Add(float64(len(result.Events)))
	metrics.TransfersMatched.WithLabelValues(a.chainName).Add(float64(len(result.Transfers)))
	return result, nil
}

// resolve returns the block's transaction IDs in block order.
func (a *Analyzer) resolve(ctx context.Context, id domain.BlockID) ([]string, error) {
	block, err := a.client.GetBlock(ctx, id)
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, chain.ErrBlockNotFound
	}
	return block.Transactions, nil
}

// fetchReceipts fetches every receipt. receipts[i] belongs to txIDs[i]
// whatever order the fetches complete in. The first error cancels the rest.
func (a *Analyzer) fetchReceipts(ctx context.Context, txIDs []string) ([]*domain.Receipt, error) {
	receipts := make([]*domain.Receipt, len(txIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, txID := range txIDs {
		g.Go(func() error {
			r, err := a.client.GetReceipt(gctx, txID)
			if err != nil {
				return err
			}
			if r == nil {
				return chain.NewChainError("get receipt", txID, chain.ErrReceiptNotFound)
			}
			receipts[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return receipts, nil
}

// evaluate keeps matching items in transaction order, then receipt order.
// It runs on the caller's goroutine, so a panicking predicate reaches the caller.
func evaluate(id domain.BlockID, receipts []*domain.Receipt, m *match.Matcher) *domain.BlockResult {
	result := domain.NewBlockResult(id)
	for _, r := range receipts {
		for _, ev := range r.Events {
			if m.MatchEvent(ev) {
				result.Events = append(result.Events, ev)
			}
		}
		for _, tr := range r.Transfers {
			if m.MatchTransfer(tr) {
				result.Transfers = append(result.Transfers, tr)
			}
		}
	}
	return result
}
