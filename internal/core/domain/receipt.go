package domain

// Receipt holds what a single transaction emitted, flattened across clauses
// in clause order.
type Receipt struct {
	TxID      string     `json:"txID"`
	Reverted  bool       `json:"reverted"`
	GasUsed   uint64     `json:"gasUsed"`
	Events    []Event    `json:"events"`
	Transfers []Transfer `json:"transfers"`
}
