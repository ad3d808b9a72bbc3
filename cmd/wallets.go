package cmd

import (
	"fmt"

	"usdc-mover/config"
	"usdc-mover/pkg/chain"
	"usdc-mover/pkg/credentials"
	"usdc-mover/pkg/settlement"
	"usdc-mover/pkg/types"
)

func newSolanaWallet(cfg *config.Config, keyPath string) (*chain.SolanaWallet, error) {
	key, err := credentials.LoadSolanaKey(keyPath)
	if err != nil {
		return nil, err
	}
	return chain.NewSolanaWallet(cfg.Solana, key, cfg.Token.Decimals, cfg.PollInterval)
}

func newEVMWallet(cfg *config.Config, keyPath string) (*chain.EVMWallet, error) {
	key, err := credentials.LoadEVMKey(keyPath)
	if err != nil {
		return nil, err
	}
	return chain.NewEVMWallet(cfg.EVM, key, cfg.Token.Decimals)
}

// bridgeNetworks describes both chains the way the bridge API reports them
func bridgeNetworks(cfg *config.Config) (settlement.Network, settlement.Network, error) {
	if cfg.EVM.ChainID <= 0 {
		return settlement.Network{}, settlement.Network{}, fmt.Errorf("invalid evm chain id %d", cfg.EVM.ChainID)
	}
	decimals := uint8(cfg.Token.Decimals)

	sol := settlement.Network{
		BridgeChain: cfg.Solana.BridgeChain,
		Token: types.TokenSpec{
			Address:  cfg.Solana.USDCMint,
			ChainID:  cfg.Solana.ChainID,
			Symbol:   cfg.Token.Symbol,
			Decimals: decimals,
		},
	}
	evm := settlement.Network{
		BridgeChain: cfg.EVM.BridgeChain,
		Token: types.TokenSpec{
			Address:  cfg.EVM.USDCContract,
			ChainID:  uint64(cfg.EVM.ChainID),
			Symbol:   cfg.Token.Symbol,
			Decimals: decimals,
		},
	}
	return sol, evm, nil
}
