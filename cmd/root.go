package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"usdc-mover/config"
	"usdc-mover/pkg/types"
)

var (
	cfgFile string
	verbose bool

	log logrus.FieldLogger = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "usdc-mover",
	Short: "A CLI for moving USDC between accounts and across Solana and EVM chains",
	Long: `usdc-mover moves USDC between two accounts. It always sends from the account
holding more, either with a direct transfer on one chain or through a bridge
route between Solana and an EVM chain.

Examples:
  usdc-mover transfer
  usdc-mover transfer 2.5 USDC --chain evm
  usdc-mover bridge 1 USDC
  usdc-mover bridge --dry-run
  usdc-mover balances
  usdc-mover status <tx-hash> --watch
  usdc-mover list-tokens`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = newLogger(verbose)
	},
}

// Execute runs the root command
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default is $HOME/.usdc-mover.yaml)")
}

func newLogger(verbose bool) logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger.WithField("run", uuid.NewString())
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	log.WithField("file", cfgFile).Debug("Configuration loaded")
	return cfg, nil
}

// handleRunError turns insufficient funds into a friendly message and a clean
// exit; every other error is returned to the caller
func handleRunError(err error) error {
	var fundsErr *types.InsufficientFundsError
	if errors.As(err, &fundsErr) {
		color.Yellow("\nNot enough funds to move: %s holds %s, need %s\n", fundsErr.Address, fundsErr.Have, fundsErr.Need)
		return nil
	}
	return err
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", color.GreenString(message))
}
