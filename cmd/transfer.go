package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"usdc-mover/config"
	"usdc-mover/pkg/parser"
	"usdc-mover/pkg/transfer"
	"usdc-mover/pkg/types"
)

var transferChain string

var transferCmd = &cobra.Command{
	Use:   "transfer [amount] [token]",
	Short: "Transfer USDC between the two accounts on one chain",
	Long: `Transfer USDC directly between the two configured accounts on a single chain.

The account holding more USDC sends; on equal balances the second account
sends. On Solana the receiver's token account is created first when missing.

Examples:
  usdc-mover transfer
  usdc-mover transfer 0.5 USDC
  usdc-mover transfer 1 --chain evm`,
	Args: cobra.MaximumNArgs(2),
	RunE: runTransfer,
}

func init() {
	rootCmd.AddCommand(transferCmd)

	transferCmd.Flags().StringVar(&transferChain, "chain", string(types.ChainSolana), "Chain to transfer on (solana or evm)")
	transferCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
}

func runTransfer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	amount, err := parser.ResolveAmount(amountArg(cfg, args), cfg.Token.Symbol, cfg.Token.Decimals)
	if err != nil {
		return err
	}

	first, second, closeFn, err := transferWallets(cfg, types.ChainKind(strings.ToLower(transferChain)))
	if err != nil {
		return err
	}
	defer closeFn()

	fmt.Printf("\nTransferring %s %s on %s between:\n", amount, color.YellowString(cfg.Token.Symbol), transferChain)
	fmt.Printf("  Account 1:  %s\n", color.CyanString(first.Address()))
	fmt.Printf("  Account 2:  %s\n", color.CyanString(second.Address()))

	if !noConfirm {
		if !confirmPrompt("Proceed with transfer?") {
			fmt.Println("\nTransfer cancelled.")
			return nil
		}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Transferring..."
	if !verbose {
		s.Start()
	}
	res, err := transfer.NewService(first, second, log).Run(cmd.Context(), amount)
	s.Stop()

	if err != nil {
		return handleRunError(err)
	}

	printSuccess("✓ Transfer confirmed")
	fmt.Printf("  From:           %s\n", res.From)
	fmt.Printf("  To:             %s\n", res.To)
	fmt.Printf("  Amount:         %s %s\n", res.Amount, cfg.Token.Symbol)
	if res.TokenAccountTx != "" {
		fmt.Printf("  Token Account:  %s\n", color.HiBlackString(res.TokenAccountTx))
	}
	fmt.Printf("  Transaction:    %s\n\n", color.CyanString(res.TransferTx))
	return nil
}

// transferWallets returns account 1 (secondary key) and account 2 (primary
// key). On equal balances account 2 sends.
func transferWallets(cfg *config.Config, kind types.ChainKind) (transfer.Wallet, transfer.Wallet, func(), error) {
	switch kind {
	case types.ChainSolana:
		first, err := newSolanaWallet(cfg, cfg.Keys.SolanaSecondary)
		if err != nil {
			return nil, nil, nil, err
		}
		second, err := newSolanaWallet(cfg, cfg.Keys.Solana)
		if err != nil {
			return nil, nil, nil, err
		}
		return first, second, func() {}, nil
	case types.ChainEVM:
		first, err := newEVMWallet(cfg, cfg.Keys.EVMSecondary)
		if err != nil {
			return nil, nil, nil, err
		}
		second, err := newEVMWallet(cfg, cfg.Keys.EVM)
		if err != nil {
			first.Close()
			return nil, nil, nil, err
		}
		return first, second, func() {
			first.Close()
			second.Close()
		}, nil
	default:
		return nil, nil, nil, fmt.Errorf("unsupported chain %q, expected solana or evm", kind)
	}
}
