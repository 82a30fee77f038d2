package domain

// Meta locates an event or transfer on chain. It is carried through untouched.
type Meta struct {
	BlockID        BlockID `json:"blockID"`
	BlockNumber    uint64  `json:"blockNumber"`
	BlockTimestamp uint64  `json:"blockTimestamp"`
	TxID           string  `json:"txID"`
	TxOrigin       string  `json:"txOrigin"`
	ClauseIndex    int     `json:"clauseIndex"`
}

// Event represents a contract-emitted log entry
type Event struct {
	Address string   `json:"address"`
	Topics  []string `json:"topics"`
	Data    string   `json:"data"`
	Meta    Meta     `json:"meta"`
}

// Transfer represents a value movement between two addresses
type Transfer struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
	Meta      Meta   `json:"meta"`
}
