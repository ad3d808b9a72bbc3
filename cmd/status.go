package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"usdc-mover/pkg/client"
	"usdc-mover/pkg/types"
)

var (
	watchStatus   bool
	watchInterval time.Duration
	statusFrom    string
	statusTo      string
	statusBridge  string
)

var statusCmd = &cobra.Command{
	Use:   "status <tx-hash>",
	Short: "Check the status of a bridge transfer",
	Long: `Check the progress of a bridge transfer by its source transaction hash.

Examples:
  usdc-mover status 0x1234...abcd
  usdc-mover status 5igS...xyz --from-chain SOL --to-chain BAS
  usdc-mover status 0x1234...abcd --watch --interval 10s`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Watch status updates until the transfer is final")
	statusCmd.Flags().DurationVar(&watchInterval, "interval", 5*time.Second, "Polling interval (when watching)")
	statusCmd.Flags().StringVar(&statusFrom, "from-chain", "", "Source bridge chain key")
	statusCmd.Flags().StringVar(&statusTo, "to-chain", "", "Destination bridge chain key")
	statusCmd.Flags().StringVar(&statusBridge, "bridge", "", "Bridge tool used for the transfer")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	apiClient := client.NewLiFiClient(cfg.Bridge.BaseURL, cfg.Bridge.APIKey)
	req := types.StatusRequest{
		TxHash:    args[0],
		FromChain: statusFrom,
		ToChain:   statusTo,
		Bridge:    statusBridge,
	}

	if watchStatus {
		return watchBridgeStatus(cmd.Context(), apiClient, req)
	}
	return checkBridgeStatus(cmd.Context(), apiClient, req)
}

func checkBridgeStatus(ctx context.Context, apiClient *client.LiFiClient, req types.StatusRequest) error {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Checking bridge status..."
	s.Start()
	status, err := apiClient.GetStatus(ctx, req)
	s.Stop()

	if err != nil {
		return err
	}

	displayStatus(status, req.TxHash)
	return nil
}

func watchBridgeStatus(ctx context.Context, apiClient *client.LiFiClient, req types.StatusRequest) error {
	if watchInterval <= 0 {
		return fmt.Errorf("interval must be positive")
	}

	fmt.Printf("\nWatching bridge status (Tx: %s)\n", color.CyanString(req.TxHash))
	fmt.Printf("Checking every %s. Press Ctrl+C to stop.\n\n", watchInterval)

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	// Check immediately first
	if checkAndDisplayStatus(ctx, apiClient, req) {
		return nil
	}

	// Then check periodically
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if checkAndDisplayStatus(ctx, apiClient, req) {
				return nil
			}
		}
	}
}

// checkAndDisplayStatus reports whether the transfer reached a final status
func checkAndDisplayStatus(ctx context.Context, apiClient *client.LiFiClient, req types.StatusRequest) bool {
	status, err := apiClient.GetStatus(ctx, req)
	if err != nil {
		color.Red("Error: %v", err)
		return false
	}

	displayStatus(status, req.TxHash)
	return status.IsFinal()
}

func displayStatus(status *types.StatusResponse, txHash string) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                      BRIDGE STATUS")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Source Tx:       %s\n", color.CyanString(txHash))
	fmt.Printf("  Status:          %s\n", getColoredStatus(status.Status))
	if status.Substatus != "" {
		fmt.Printf("  Substatus:       %s\n", status.Substatus)
	}
	if status.SubstatusMessage != "" {
		fmt.Printf("  Message:         %s\n", status.SubstatusMessage)
	}
	if status.Tool != "" {
		fmt.Printf("  Bridge:          %s\n", status.Tool)
	}

	if status.Sending != nil && status.Sending.TxHash != "" {
		fmt.Printf("  Sending Tx:      %s\n", color.HiBlackString(status.Sending.TxHash))
	}
	if status.Receiving != nil && status.Receiving.TxHash != "" {
		fmt.Printf("  Receiving Tx:    %s\n", color.HiBlackString(status.Receiving.TxHash))
		if status.Receiving.Amount != "" {
			fmt.Printf("  Amount Out:      %s\n", status.Receiving.Amount)
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

func getColoredStatus(status string) string {
	status = strings.ToUpper(status)

	switch status {
	case types.StatusDone:
		return color.GreenString(status)
	case types.StatusPending:
		return color.YellowString(status)
	case types.StatusFailed, types.StatusInvalid:
		return color.RedString(status)
	case types.StatusNotFound:
		return color.MagentaString(status)
	default:
		return status
	}
}
