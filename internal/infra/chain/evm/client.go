// Package evm implements chain.Client over Ethereum JSON-RPC.
//
// Logs become events and a transaction's native value becomes a transfer,
// so EVM blocks flow through the same matcher as Thor blocks.
package evm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/vietddude/tracer/internal/core/domain"
	"github.com/vietddude/tracer/internal/infra/chain"
	"github.com/vietddude/tracer/internal/infra/rpc"
)

// recentBlocks bounds how many blocks' transactions are kept for GetReceipt.
const recentBlocks = 8

type Client struct {
	client rpc.RPCClient
	log    *slog.Logger

	// GetBlock fetches full transactions; GetReceipt reuses them to avoid
	// an eth_getTransactionByHash per receipt. Oldest block is evicted first.
	blocksMu sync.Mutex
	blocks   []cachedBlock
}

type cachedBlock struct {
	hash      string
	timestamp uint64
	txs       map[string]rawTx
}

type cachedTx struct {
	tx        rawTx
	timestamp uint64
}

func NewClient(client rpc.RPCClient) *Client {
	return &Client{
		client: client,
		log:    slog.Default().With("chain", "evm"),
	}
}

type rawBlock struct {
	Hash         string         `json:"hash"`
	Number       hexutil.Uint64 `json:"number"`
	ParentHash   string         `json:"parentHash"`
	Timestamp    hexutil.Uint64 `json:"timestamp"`
	Transactions []rawTx        `json:"transactions"`
}

type rawTx struct {
	Hash        string         `json:"hash"`
	BlockHash   string         `json:"blockHash"`
	BlockNumber hexutil.Uint64 `json:"blockNumber"`
	From        string         `json:"from"`
	To          *string        `json:"to"`
	Value       *hexutil.Big   `json:"value"`
}

type rawReceipt struct {
	TransactionHash string          `json:"transactionHash"`
	BlockHash       string          `json:"blockHash"`
	BlockNumber     hexutil.Uint64  `json:"blockNumber"`
	From            string          `json:"from"`
	ContractAddress *string         `json:"contractAddress"`
	GasUsed         hexutil.Uint64  `json:"gasUsed"`
	Status          *hexutil.Uint64 `json:"status"`
	Logs            []rawLog        `json:"logs"`
}

type rawLog struct {
	Address string   `json:"address"`
	Topics  []string `json:"topics"`
	Data    string   `json:"data"`
}

func (c *Client) GetBlock(ctx context.Context, id domain.BlockID) (*domain.Block, error) {
	op := rpc.NewHTTPOperation("eth_getBlockByHash", []any{id.String(), true})
	result, err := c.client.Execute(ctx, op)
	if err != nil {
		return nil, chain.NewChainError("eth_getBlockByHash", id.String(), err)
	}
	if rpc.IsNull(result) {
		return nil, chain.ErrBlockNotFound
	}

	var b rawBlock
	if err := json.Unmarshal(result, &b); err != nil {
		return nil, chain.NewChainError("eth_getBlockByHash", id.String(), fmt.Errorf("decode block: %w", err))
	}

	txs := make([]string, 0, len(b.Transactions))
	byHash := make(map[string]rawTx, len(b.Transactions))
	for _, tx := range b.Transactions {
		txs = append(txs, tx.Hash)
		byHash[tx.Hash] = tx
	}
	c.remember(cachedBlock{hash: b.Hash, timestamp: uint64(b.Timestamp), txs: byHash})

	return &domain.Block{
		ID:           domain.BlockID(b.Hash),
		Number:       uint64(b.Number),
		ParentID:     b.ParentHash,
		Timestamp:    uint64(b.Timestamp),
		Transactions: txs,
	}, nil
}

func (c *Client) GetReceipt(ctx context.Context, txID string) (*domain.Receipt, error) {
	op := rpc.NewHTTPOperation("eth_getTransactionReceipt", []any{txID})
	result, err := c.client.Execute(ctx, op)
	if err != nil {
		return nil, chain.NewChainError("eth_getTransactionReceipt", txID, err)
	}
	if rpc.IsNull(result) {
		return nil, chain.NewChainError("eth_getTransactionReceipt", txID, chain.ErrReceiptNotFound)
	}

	var r rawReceipt
	if err := json.Unmarshal(result, &r); err != nil {
		return nil, chain.NewChainError("eth_getTransactionReceipt", txID, fmt.Errorf("decode receipt: %w", err))
	}

	cached, err := c.transaction(ctx, txID, r.BlockHash)
	if err != nil {
		return nil, err
	}

	return toReceipt(txID, r, cached), nil
}

// remember stores a block's transactions, replacing an entry for the same
// hash and evicting the oldest block when full.
func (c *Client) remember(b cachedBlock) {
	c.blocksMu.Lock()
	defer c.blocksMu.Unlock()

	for i, cb := range c.blocks {
		if strings.EqualFold(cb.hash, b.hash) {
			c.blocks = append(c.blocks[:i], c.blocks[i+1:]...)
			break
		}
	}
	if len(c.blocks) >= recentBlocks {
		c.blocks = c.blocks[1:]
	}
	c.blocks = append(c.blocks, b)
}

func (c *Client) lookup(txID, blockHash string) (cachedTx, bool) {
	c.blocksMu.Lock()
	defer c.blocksMu.Unlock()

	for _, cb := range c.blocks {
		if !strings.EqualFold(cb.hash, blockHash) {
			continue
		}
		tx, ok := cb.txs[txID]
		return cachedTx{tx: tx, timestamp: cb.timestamp}, ok
	}
	return cachedTx{}, false
}

// transaction returns the block's copy of a transaction, fetching it
// (and its block timestamp) when the block is not among the recent ones.
func (c *Client) transaction(ctx context.Context, txID, blockHash string) (cachedTx, error) {
	if cached, ok := c.lookup(txID, blockHash); ok {
		return cached, nil
	}
	var cached cachedTx

	c.log.Debug("tx cache miss", "tx", txID)

	op := rpc.NewHTTPOperation("eth_getTransactionByHash", []any{txID})
	result, err := c.client.Execute(ctx, op)
	if err != nil {
		return cachedTx{}, chain.NewChainError("eth_getTransactionByHash", txID, err)
	}
	if rpc.IsNull(result) {
		return cachedTx{}, chain.NewChainError("eth_getTransactionByHash", txID, chain.ErrReceiptNotFound)
	}
	if err := json.Unmarshal(result, &cached.tx); err != nil {
		return cachedTx{}, chain.NewChainError("eth_getTransactionByHash", txID, fmt.Errorf("decode tx: %w", err))
	}

	op = rpc.NewHTTPOperation("eth_getBlockByHash", []any{blockHash, false})
	result, err = c.client.Execute(ctx, op)
	if err != nil {
		return cachedTx{}, chain.NewChainError("eth_getBlockByHash", blockHash, err)
	}
	if !rpc.IsNull(result) {
		var header struct {
			Timestamp hexutil.Uint64 `json:"timestamp"`
		}
		if err := json.Unmarshal(result, &header); err != nil {
			return cachedTx{}, chain.NewChainError("eth_getBlockByHash", blockHash, fmt.Errorf("decode header: %w", err))
		}
		cached.timestamp = uint64(header.Timestamp)
	}
	return cached, nil
}

func toReceipt(txID string, r rawReceipt, cached cachedTx) *domain.Receipt {
	// pre-Byzantium receipts carry no status
	reverted := r.Status != nil && *r.Status == 0
	from := strings.ToLower(r.From)
	if from == "" {
		from = strings.ToLower(cached.tx.From)
	}

	meta := domain.Meta{
		BlockID:        domain.BlockID(r.BlockHash),
		BlockNumber:    uint64(r.BlockNumber),
		BlockTimestamp: cached.timestamp,
		TxID:           txID,
		TxOrigin:       from,
	}

	receipt := &domain.Receipt{
		TxID:      txID,
		Reverted:  reverted,
		GasUsed:   uint64(r.GasUsed),
		Events:    make([]domain.Event, 0, len(r.Logs)),
		Transfers: []domain.Transfer{},
	}

	for _, l := range r.Logs {
		topics := l.Topics
		if topics == nil {
			topics = []string{}
		}
		receipt.Events = append(receipt.Events, domain.Event{
			Address: strings.ToLower(l.Address),
			Topics:  topics,
			Data:    l.Data,
			Meta:    meta,
		})
	}

	// a reverted transaction moves no value
	value := cached.tx.Value
	if !reverted && value != nil && value.ToInt().Sign() > 0 {
		to := ""
		switch {
		case cached.tx.To != nil:
			to = *cached.tx.To
		case r.ContractAddress != nil:
			to = *r.ContractAddress
		}
		receipt.Transfers = append(receipt.Transfers, domain.Transfer{
			Sender:    from,
			Recipient: strings.ToLower(to),
			Amount:    value.String(),
			Meta:      meta,
		})
	}

	return receipt
}
