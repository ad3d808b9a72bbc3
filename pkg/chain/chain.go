package chain

import (
	"context"

	"usdc-mover/pkg/types"
)

// Wallet is an account on one chain holding native currency and the
// configured token
type Wallet interface {
	Chain() types.ChainKind
	Address() string
	NativeSymbol() string
	NativeBalance(ctx context.Context) (types.TokenAmount, error)
	TokenBalance(ctx context.Context) (types.TokenAmount, error)
}

// Receipt is the outcome of a mined EVM transaction
type Receipt struct {
	TxHash      string
	Success     bool
	BlockNumber uint64
	GasUsed     uint64
}
