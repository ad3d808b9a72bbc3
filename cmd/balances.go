package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"usdc-mover/pkg/chain"
)

var balancesCmd = &cobra.Command{
	Use:   "balances",
	Short: "Show native and USDC balances of every configured account",
	Long: `Show native and USDC balances of the configured Solana and EVM accounts.

Accounts whose key file is missing are skipped.

Examples:
  usdc-mover balances`,
	Args: cobra.NoArgs,
	RunE: runBalances,
}

func init() {
	rootCmd.AddCommand(balancesCmd)
}

func runBalances(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var wallets []chain.Wallet
	for _, path := range []string{cfg.Keys.Solana, cfg.Keys.SolanaSecondary} {
		w, err := newSolanaWallet(cfg, path)
		if err != nil {
			log.WithError(err).Warn("Skipping Solana account")
			continue
		}
		wallets = append(wallets, w)
	}
	for _, path := range []string{cfg.Keys.EVM, cfg.Keys.EVMSecondary} {
		w, err := newEVMWallet(cfg, path)
		if err != nil {
			log.WithError(err).Warn("Skipping EVM account")
			continue
		}
		defer w.Close()
		wallets = append(wallets, w)
	}

	if len(wallets) == 0 {
		return fmt.Errorf("no accounts configured")
	}

	fmt.Println("\n" + strings.Repeat("=", 80))
	color.Green("                               BALANCES")
	fmt.Println(strings.Repeat("=", 80))
	for _, w := range wallets {
		displayBalance(cmd.Context(), w, cfg.Token.Symbol)
	}
	fmt.Println("\n" + strings.Repeat("=", 80) + "\n")
	return nil
}

func displayBalance(ctx context.Context, w chain.Wallet, symbol string) {
	color.Cyan("\n%s  %s", strings.ToUpper(string(w.Chain())), w.Address())

	native, err := w.NativeBalance(ctx)
	if err != nil {
		color.Red("  %s: %v", w.NativeSymbol(), err)
	} else {
		fmt.Printf("  %-6s %s\n", w.NativeSymbol(), native)
	}

	token, err := w.TokenBalance(ctx)
	if err != nil {
		color.Red("  %s: %v", symbol, err)
	} else {
		fmt.Printf("  %-6s %s\n", symbol, color.YellowString(token.String()))
	}
}
