package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"usdc-mover/pkg/client"
	"usdc-mover/pkg/types"
)

var (
	filterChain  string
	filterSymbol string
)

var tokensCmd = &cobra.Command{
	Use:     "list-tokens",
	Aliases: []string{"tokens", "ls"},
	Short:   "List tokens the bridge supports",
	Long: `List tokens the bridge API supports on the configured chains.

You can select other chains by their bridge chain key and filter by symbol.

Examples:
  usdc-mover list-tokens
  usdc-mover list-tokens --chain ARB
  usdc-mover list-tokens --symbol USDC`,
	RunE: runListTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)

	tokensCmd.Flags().StringVar(&filterChain, "chain", "", "Bridge chain key(s), comma separated (default: configured chains)")
	tokensCmd.Flags().StringVar(&filterSymbol, "symbol", "", "Filter by token symbol")
}

func runListTokens(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	chains := []string{cfg.Solana.BridgeChain, cfg.EVM.BridgeChain}
	if filterChain != "" {
		chains = strings.Split(filterChain, ",")
	}

	apiClient := client.NewLiFiClient(cfg.Bridge.BaseURL, cfg.Bridge.APIKey)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Fetching supported tokens..."
	s.Start()
	resp, err := apiClient.GetTokens(cmd.Context(), chains...)
	s.Stop()

	if err != nil {
		return err
	}

	displayTokens(filterTokens(resp.Tokens, filterSymbol))
	return nil
}

// filterTokens keeps tokens whose symbol contains symbol, dropping chains
// left empty
func filterTokens(tokens map[string][]types.Token, symbol string) map[string][]types.Token {
	if symbol == "" {
		return tokens
	}

	symbol = strings.ToUpper(symbol)
	filtered := make(map[string][]types.Token)
	for chainID, chainTokens := range tokens {
		for _, token := range chainTokens {
			if strings.Contains(strings.ToUpper(token.Symbol), symbol) {
				filtered[chainID] = append(filtered[chainID], token)
			}
		}
	}
	return filtered
}

func displayTokens(tokensByChain map[string][]types.Token) {
	if len(tokensByChain) == 0 {
		fmt.Println("\nNo tokens found matching the criteria.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 90))
	color.Green("                            SUPPORTED TOKENS")
	fmt.Println(strings.Repeat("=", 90))

	// Sort chains alphabetically
	chains := make([]string, 0, len(tokensByChain))
	for chainID := range tokensByChain {
		chains = append(chains, chainID)
	}
	sort.Strings(chains)

	total := 0
	for _, chainID := range chains {
		color.Cyan("\nChain %s", chainID)
		fmt.Println(strings.Repeat("-", 90))

		for _, token := range tokensByChain[chainID] {
			address := token.Address

			// Truncate address if too long
			if len(address) > 46 {
				address = address[:43] + "..."
			}

			fmt.Printf("  %-10s  %2d decimals  %s\n",
				color.YellowString(token.Symbol),
				token.Decimals,
				color.HiBlackString(address))
			total++
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 90))
	fmt.Printf("\nTotal: %d tokens across %d chains\n\n", total, len(chains))
}
