package cmd

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"usdc-mover/config"
	"usdc-mover/pkg/types"
)

func testConfig() *config.Config {
	return &config.Config{
		Solana: config.SolanaConfig{
			RPCUrl:      "http://127.0.0.1:8899",
			Commitment:  "confirmed",
			USDCMint:    "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			BridgeChain: "SOL",
			ChainID:     1151111081099710,
		},
		EVM: config.EVMConfig{
			RPCUrl:       "http://127.0.0.1:8545",
			ChainID:      8453,
			BridgeChain:  "BAS",
			USDCContract: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
		},
		Token:        config.TokenConfig{Symbol: "USDC", Decimals: 6},
		Amount:       "1",
		PollInterval: time.Second,
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestFilterTokens(t *testing.T) {
	tokens := map[string][]types.Token{
		"8453": {
			{Symbol: "USDC", ChainID: 8453},
			{Symbol: "ETH", ChainID: 8453},
		},
		"1151111081099710": {
			{Symbol: "SOL", ChainID: 1151111081099710},
		},
	}

	require.Equal(t, tokens, filterTokens(tokens, ""))

	filtered := filterTokens(tokens, "usd")
	require.Len(t, filtered, 1)
	require.Len(t, filtered["8453"], 1)
	require.Equal(t, "USDC", filtered["8453"][0].Symbol)
}

func TestHandleRunError(t *testing.T) {
	fundsErr := &types.InsufficientFundsError{
		Address: "sender",
		Have:    types.NewTokenAmountFromUint64(900_000, 6),
		Need:    types.NewTokenAmountFromUint64(1_000_000, 6),
	}
	require.NoError(t, handleRunError(fundsErr))

	other := errors.New("rpc down")
	require.Equal(t, other, handleRunError(other))
}

func TestBridgeNetworks(t *testing.T) {
	sol, evm, err := bridgeNetworks(testConfig())
	require.NoError(t, err)

	require.Equal(t, "SOL", sol.BridgeChain)
	require.Equal(t, types.TokenSpec{
		Address:  "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		ChainID:  1151111081099710,
		Symbol:   "USDC",
		Decimals: 6,
	}, sol.Token)

	require.Equal(t, "BAS", evm.BridgeChain)
	require.Equal(t, types.TokenSpec{
		Address:  "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
		ChainID:  8453,
		Symbol:   "USDC",
		Decimals: 6,
	}, evm.Token)

	cfg := testConfig()
	cfg.EVM.ChainID = 0
	_, _, err = bridgeNetworks(cfg)
	require.Error(t, err)
}

func TestAmountArg(t *testing.T) {
	cfg := testConfig()
	cfg.Amount = "2.5"

	require.Equal(t, "2.5", amountArg(cfg, nil))
	require.Equal(t, "1.5", amountArg(cfg, []string{"1.5"}))
	require.Equal(t, "1.5 USDC", amountArg(cfg, []string{"1.5", "USDC"}))
}

func TestTransferWalletsOrder(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()

	primarySol, secondarySol := solana.NewWallet(), solana.NewWallet()
	cfg.Keys.Solana = writeFile(t, dir, "sol-account1.key", primarySol.PrivateKey.String())
	cfg.Keys.SolanaSecondary = writeFile(t, dir, "sol-account2.key", secondarySol.PrivateKey.String())

	first, second, closeFn, err := transferWallets(cfg, types.ChainSolana)
	require.NoError(t, err)
	closeFn()
	require.Equal(t, secondarySol.PublicKey().String(), first.Address())
	require.Equal(t, primarySol.PublicKey().String(), second.Address())

	primaryEVM, err := crypto.GenerateKey()
	require.NoError(t, err)
	secondaryEVM, err := crypto.GenerateKey()
	require.NoError(t, err)
	cfg.Keys.EVM = writeFile(t, dir, "eth-account1.key", hex.EncodeToString(crypto.FromECDSA(primaryEVM)))
	cfg.Keys.EVMSecondary = writeFile(t, dir, "eth-account2.key", hex.EncodeToString(crypto.FromECDSA(secondaryEVM)))

	first, second, closeFn, err = transferWallets(cfg, types.ChainEVM)
	require.NoError(t, err)
	defer closeFn()
	require.Equal(t, crypto.PubkeyToAddress(secondaryEVM.PublicKey).Hex(), first.Address())
	require.Equal(t, crypto.PubkeyToAddress(primaryEVM.PublicKey).Hex(), second.Address())

	_, _, _, err = transferWallets(cfg, "tron")
	require.Error(t, err)
}
