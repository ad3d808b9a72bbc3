package types

// ChainKind identifies the family of a chain
type ChainKind string

const (
	ChainSolana ChainKind = "solana"
	ChainEVM    ChainKind = "evm"
)

// Native unit decimals
const (
	SolanaNativeDecimals int32 = 9  // lamports per SOL
	EVMNativeDecimals    int32 = 18 // wei per ETH
)

// TokenSpec describes a token the way the bridge API reports it
type TokenSpec struct {
	Address  string
	ChainID  uint64
	Symbol   string
	Decimals uint8
}

// FirstSends decides transfer direction between two accounts. The first
// account sends only when its balance is strictly greater; on a tie the
// second account sends.
func FirstSends(first, second TokenAmount) bool {
	return first.Float64() > second.Float64()
}
