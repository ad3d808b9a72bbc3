package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"usdc-mover/config"
	"usdc-mover/pkg/client"
	"usdc-mover/pkg/parser"
	"usdc-mover/pkg/settlement"
)

var (
	noConfirm bool
	dryRun    bool
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge [amount] [token]",
	Short: "Bridge USDC between the Solana and EVM accounts",
	Long: `Bridge USDC between the configured Solana account and EVM account.

The account holding more USDC sends; on equal balances the EVM account sends.
The bridge route is requested from the bridge API and checked field by field
against the request before anything is signed.

Examples:
  # Bridge the configured amount
  usdc-mover bridge

  # Bridge 2.5 USDC without a confirmation prompt
  usdc-mover bridge 2.5 USDC --yes

  # Fetch and validate a route without submitting it
  usdc-mover bridge 1 --dry-run`,
	Args: cobra.MaximumNArgs(2),
	RunE: runBridge,
}

func init() {
	rootCmd.AddCommand(bridgeCmd)

	bridgeCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
	bridgeCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the route but do not submit any transaction")
}

func runBridge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	amount, err := parser.ResolveAmount(amountArg(cfg, args), cfg.Token.Symbol, cfg.Token.Decimals)
	if err != nil {
		return err
	}

	solWallet, err := newSolanaWallet(cfg, cfg.Keys.Solana)
	if err != nil {
		return err
	}
	evmWallet, err := newEVMWallet(cfg, cfg.Keys.EVM)
	if err != nil {
		return err
	}
	defer evmWallet.Close()

	solNetwork, evmNetwork, err := bridgeNetworks(cfg)
	if err != nil {
		return err
	}

	params := settlement.Params{
		Amount:             amount,
		Solana:             solNetwork,
		EVM:                evmNetwork,
		ApprovalMultiplier: cfg.Bridge.ApprovalMultiplier,
		DryRun:             dryRun,
	}

	displayBridgeRequest(params, solWallet.Address(), evmWallet.Address())

	if !noConfirm && !dryRun {
		if !confirmPrompt("Proceed with bridge transfer?") {
			fmt.Println("\nBridge transfer cancelled.")
			return nil
		}
	}

	apiClient := client.NewLiFiClient(cfg.Bridge.BaseURL, cfg.Bridge.APIKey)
	executor := settlement.NewExecutor(params, solWallet, evmWallet, apiClient, log)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Bridging..."
	if !verbose {
		s.Start()
	}
	res, err := executor.Run(cmd.Context())
	s.Stop()

	if err != nil {
		if res != nil {
			log.WithField("state", res.State.String()).Debug("Bridge run stopped")
		}
		return handleRunError(err)
	}

	displayBridgeResult(res, cfg)
	return nil
}

func amountArg(cfg *config.Config, args []string) string {
	if len(args) == 0 {
		return cfg.Amount
	}
	return strings.Join(args, " ")
}

func displayBridgeRequest(params settlement.Params, solAddress, evmAddress string) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                    BRIDGE REQUEST")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  Amount:            %s %s\n", params.Amount, color.YellowString(params.Solana.Token.Symbol))
	fmt.Printf("  Solana Account:    %s\n", color.CyanString(solAddress))
	fmt.Printf("  EVM Account:       %s\n", color.CyanString(evmAddress))
	fmt.Printf("  Chains:            %s <-> %s\n", params.Solana.BridgeChain, params.EVM.BridgeChain)
	if params.DryRun {
		fmt.Printf("  Mode:              %s\n", color.MagentaString("dry run"))
	}

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}

func displayBridgeResult(res *settlement.Result, cfg *config.Config) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                    BRIDGE RESULT")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  Direction:         %s\n", res.Direction)
	fmt.Printf("  Solana Balance:    %s\n", res.SolanaBalance)
	fmt.Printf("  EVM Balance:       %s\n", res.EVMBalance)
	fmt.Printf("  State:             %s\n", color.GreenString(res.State.String()))
	if res.Quote != nil {
		fmt.Printf("  Route:             %s (%s)\n", res.Quote.Tool, res.Quote.ID)
		if res.Quote.Estimate != nil && res.Quote.Estimate.ToAmount != "" {
			fmt.Printf("  Estimated Output:  %s minor units\n", res.Quote.Estimate.ToAmount)
		}
	}
	if res.ApprovalTx != "" {
		fmt.Printf("  Approval Tx:       %s\n", color.HiBlackString(res.ApprovalTx))
	}
	if res.TxHash != "" {
		fmt.Printf("  Bridge Tx:         %s\n", color.CyanString(res.TxHash))
	}

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")

	if res.TxHash != "" {
		fromChain, toChain := cfg.Solana.BridgeChain, cfg.EVM.BridgeChain
		if res.Direction == settlement.EVMToSolana {
			fromChain, toChain = toChain, fromChain
		}
		fmt.Println("You can monitor the bridge transfer using:")
		color.Cyan("  usdc-mover status %s --from-chain %s --to-chain %s\n", res.TxHash, fromChain, toChain)
	}
}

func confirmPrompt(question string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("\n%s (y/N): ", question)

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
