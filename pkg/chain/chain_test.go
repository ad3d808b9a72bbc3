package chain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"

	"usdc-mover/pkg/types"
)

func unsignedTransfer(t *testing.T, payer solana.PublicKey) []byte {
	t.Helper()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(1000, payer, solana.NewWallet().PublicKey()).Build(),
		},
		solana.Hash(solana.NewWallet().PublicKey()),
		solana.TransactionPayer(payer),
	)
	require.NoError(t, err)

	// placeholder signature, as delivered by the bridge API
	tx.Signatures = []solana.Signature{{}}
	raw, err := tx.MarshalBinary()
	require.NoError(t, err)
	return raw
}

func TestSignPrebuilt(t *testing.T) {
	wallet := solana.NewWallet()
	raw := unsignedTransfer(t, wallet.PublicKey())

	tx, err := SignPrebuilt(raw, wallet.PrivateKey)
	require.NoError(t, err)
	require.Len(t, tx.Signatures, 1)
	require.NotEqual(t, solana.Signature{}, tx.Signatures[0])
	require.NoError(t, tx.VerifySignatures())
}

func TestSignPrebuiltForeignSigner(t *testing.T) {
	raw := unsignedTransfer(t, solana.NewWallet().PublicKey())

	_, err := SignPrebuilt(raw, solana.NewWallet().PrivateKey)
	require.Error(t, err)
}

func TestSignPrebuiltGarbage(t *testing.T) {
	_, err := SignPrebuilt([]byte{0x01, 0x02}, solana.NewWallet().PrivateKey)
	require.Error(t, err)
}

func TestCommitmentReached(t *testing.T) {
	require.True(t, commitmentReached(rpc.ConfirmationStatusConfirmed, rpc.CommitmentConfirmed))
	require.True(t, commitmentReached(rpc.ConfirmationStatusFinalized, rpc.CommitmentConfirmed))
	require.False(t, commitmentReached(rpc.ConfirmationStatusProcessed, rpc.CommitmentConfirmed))
	require.False(t, commitmentReached(rpc.ConfirmationStatusConfirmed, rpc.CommitmentFinalized))
	require.False(t, commitmentReached("", rpc.CommitmentProcessed))
}

func mustQuantity(t *testing.T, s string) types.Quantity {
	t.Helper()
	q, err := types.ParseQuantity(s)
	require.NoError(t, err)
	return q
}

func TestNewBridgeTransaction(t *testing.T) {
	from := common.HexToAddress("0x1111111111111111111111111111111111111111")
	req := types.EVMTransactionRequest{
		To:       "0x2222222222222222222222222222222222222222",
		From:     "0x1111111111111111111111111111111111111111",
		ChainID:  mustQuantity(t, "8453"),
		Value:    mustQuantity(t, "0x10"),
		Data:     "0xdeadbeef",
		GasPrice: mustQuantity(t, "0x3b9aca00"),
		GasLimit: mustQuantity(t, "250000"),
	}

	tx, err := NewBridgeTransaction(req, from, big.NewInt(8453), 7)
	require.NoError(t, err)
	require.Equal(t, uint64(7), tx.Nonce())
	require.Equal(t, common.HexToAddress(req.To), *tx.To())
	require.Equal(t, big.NewInt(16), tx.Value())
	require.Equal(t, uint64(250000), tx.Gas())
	require.Equal(t, big.NewInt(1_000_000_000), tx.GasPrice())
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, tx.Data())
}

func TestNewBridgeTransactionRejects(t *testing.T) {
	from := common.HexToAddress("0x1111111111111111111111111111111111111111")
	valid := func() types.EVMTransactionRequest {
		return types.EVMTransactionRequest{
			To:       "0x2222222222222222222222222222222222222222",
			GasPrice: mustQuantity(t, "1"),
			GasLimit: mustQuantity(t, "21000"),
		}
	}

	tests := []struct {
		name   string
		mutate func(*types.EVMTransactionRequest)
	}{
		{"bad target", func(r *types.EVMTransactionRequest) { r.To = "not-an-address" }},
		{"other sender", func(r *types.EVMTransactionRequest) { r.From = "0x3333333333333333333333333333333333333333" }},
		{"other chain", func(r *types.EVMTransactionRequest) { r.ChainID = mustQuantity(t, "1") }},
		{"no gas limit", func(r *types.EVMTransactionRequest) { r.GasLimit = types.Quantity{} }},
		{"bad data", func(r *types.EVMTransactionRequest) { r.Data = "0xzz" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)
			_, err := NewBridgeTransaction(req, from, big.NewInt(8453), 0)
			require.Error(t, err)
		})
	}

	_, err := NewBridgeTransaction(valid(), from, big.NewInt(8453), 0)
	require.NoError(t, err)
}

func TestERC20ABIPacking(t *testing.T) {
	parsed, err := ERC20ABI()
	require.NoError(t, err)

	spender := common.HexToAddress("0x2222222222222222222222222222222222222222")
	data, err := parsed.Pack("approve", spender, big.NewInt(2_000_000))
	require.NoError(t, err)
	require.Len(t, data, 4+32+32)
	// approve(address,uint256)
	require.Equal(t, []byte{0x09, 0x5e, 0xa7, 0xb3}, data[:4])

	data, err = parsed.Pack("allowance", spender, spender)
	require.NoError(t, err)
	// allowance(address,address)
	require.Equal(t, []byte{0xdd, 0x62, 0xed, 0x3e}, data[:4])
}
