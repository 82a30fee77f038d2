package domain

// BlockID identifies a block by its hash.
type BlockID string

func (id BlockID) String() string {
	return string(id)
}

// Block represents the block metadata needed to walk its transactions
type Block struct {
	ID           BlockID  `json:"id"`
	Number       uint64   `json:"number"`
	ParentID     string   `json:"parentID"`
	Timestamp    uint64   `json:"timestamp"`
	Transactions []string `json:"transactions"`
}

// BlockResult is the filtered view of one block.
// Events and Transfers are never nil so they encode as empty arrays.
type BlockResult struct {
	BlockID   BlockID    `json:"blockId"`
	Events    []Event    `json:"events"`
	Transfers []Transfer `json:"transfers"`
}

// NewBlockResult returns an empty result for the given block.
func NewBlockResult(id BlockID) *BlockResult {
	return &BlockResult{
		BlockID:   id,
		Events:    make([]Event, 0),
		Transfers: make([]Transfer, 0),
	}
}
