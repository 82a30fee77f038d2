// Package thor implements chain.Client over the VeChainThor REST API.
package thor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vietddude/tracer/internal/core/domain"
	"github.com/vietddude/tracer/internal/infra/chain"
	"github.com/vietddude/tracer/internal/infra/rpc"
)

// Client reads blocks and receipts from a Thor node.
type Client struct {
	client rpc.RPCClient
}

func NewClient(client rpc.RPCClient) *Client {
	return &Client{client: client}
}

type blockJSON struct {
	ID           string   `json:"id"`
	Number       uint64   `json:"number"`
	ParentID     string   `json:"parentID"`
	Timestamp    uint64   `json:"timestamp"`
	Transactions []string `json:"transactions"`
}

type receiptJSON struct {
	GasUsed  uint64 `json:"gasUsed"`
	Reverted bool   `json:"reverted"`
	Meta     struct {
		BlockID        string `json:"blockID"`
		BlockNumber    uint64 `json:"blockNumber"`
		BlockTimestamp uint64 `json:"blockTimestamp"`
		TxID           string `json:"txID"`
		TxOrigin       string `json:"txOrigin"`
	} `json:"meta"`
	Outputs []struct {
		ContractAddress *string `json:"contractAddress"`
		Events          []struct {
			Address string   `json:"address"`
			Topics  []string `json:"topics"`
			Data    string   `json:"data"`
		} `json:"events"`
		Transfers []struct {
			Sender    string `json:"sender"`
			Recipient string `json:"recipient"`
			Amount    string `json:"amount"`
		} `json:"transfers"`
	} `json:"outputs"`
}

func (c *Client) GetBlock(ctx context.Context, id domain.BlockID) (*domain.Block, error) {
	op := rpc.NewRESTOperation("blocks/"+id.String(), http.MethodGet, nil)
	raw, err := c.client.Execute(ctx, op)
	if err != nil {
		return nil, chain.NewChainError("get block", id.String(), err)
	}
	if rpc.IsNull(raw) {
		return nil, chain.ErrBlockNotFound
	}

	var b blockJSON
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, chain.NewChainError("get block", id.String(), fmt.Errorf("decode block: %w", err))
	}

	txs := b.Transactions
	if txs == nil {
		txs = []string{}
	}
	return &domain.Block{
		ID:           domain.BlockID(b.ID),
		Number:       b.Number,
		ParentID:     b.ParentID,
		Timestamp:    b.Timestamp,
		Transactions: txs,
	}, nil
}

func (c *Client) GetReceipt(ctx context.Context, txID string) (*domain.Receipt, error) {
	op := rpc.NewRESTOperation("transactions/"+txID+"/receipt", http.MethodGet, nil)
	raw, err := c.client.Execute(ctx, op)
	if err != nil {
		return nil, chain.NewChainError("get receipt", txID, err)
	}
	if rpc.IsNull(raw) {
		return nil, chain.NewChainError("get receipt", txID, chain.ErrReceiptNotFound)
	}

	var r receiptJSON
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, chain.NewChainError("get receipt", txID, fmt.Errorf("decode receipt: %w", err))
	}
	return r.toDomain(txID), nil
}

// toDomain flattens clause outputs in clause order.
func (r *receiptJSON) toDomain(txID string) *domain.Receipt {
	receipt := &domain.Receipt{
		TxID:      txID,
		Reverted:  r.Reverted,
		GasUsed:   r.GasUsed,
		Events:    []domain.Event{},
		Transfers: []domain.Transfer{},
	}
	if r.Meta.TxID != "" {
		receipt.TxID = r.Meta.TxID
	}

	for i, out := range r.Outputs {
		meta := domain.Meta{
			BlockID:        domain.BlockID(r.Meta.BlockID),
			BlockNumber:    r.Meta.BlockNumber,
			BlockTimestamp: r.Meta.BlockTimestamp,
			TxID:           receipt.TxID,
			TxOrigin:       r.Meta.TxOrigin,
			ClauseIndex:    i,
		}
		for _, ev := range out.Events {
			topics := ev.Topics
			if topics == nil {
				topics = []string{}
			}
			receipt.Events = append(receipt.Events, domain.Event{
				Address: ev.Address,
				Topics:  topics,
				Data:    ev.Data,
				Meta:    meta,
			})
		}
		for _, tr := range out.Transfers {
			receipt.Transfers = append(receipt.Transfers, domain.Transfer{
				Sender:    tr.Sender,
				Recipient: tr.Recipient,
				Amount:    tr.Amount,
				Meta:      meta,
			})
		}
	}
	return receipt
}
