package chain

import (
	"context"

	"github.com/vietddude/tracer/internal/core/domain"
)

// Client is the boundary between the analyzer and a chain node.
type Client interface {
	// GetBlock fetches block metadata and its ordered transaction IDs.
	// Returns ErrBlockNotFound when the node does not know the block.
	GetBlock(ctx context.Context, id domain.BlockID) (*domain.Block, error)

	// GetReceipt fetches the events and transfers of a transaction.
	// Any failure, including an unknown transaction, is a *ChainError.
	GetReceipt(ctx context.Context, txID string) (*domain.Receipt, error)
}
