package domain

// ChainType selects the node API a chain client speaks.
type ChainType string

const (
	ChainTypeThor ChainType = "thor"
	ChainTypeEVM  ChainType = "evm"
)

// Valid reports whether t names a supported chain type.
func (t ChainType) Valid() bool {
	switch t {
	case ChainTypeThor, ChainTypeEVM:
		return true
	}
	return false
}
