package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"usdc-mover/pkg/types"
)

// Config holds the application configuration
type Config struct {
	Solana       SolanaConfig  `mapstructure:"solana"`
	EVM          EVMConfig     `mapstructure:"evm"`
	Token        TokenConfig   `mapstructure:"token"`
	Bridge       BridgeConfig  `mapstructure:"bridge"`
	Keys         KeysConfig    `mapstructure:"keys"`
	Amount       string        `mapstructure:"amount"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// SolanaConfig holds Solana network parameters
type SolanaConfig struct {
	RPCUrl        string `mapstructure:"rpc_url"`
	Commitment    string `mapstructure:"commitment"`
	SkipPreflight bool   `mapstructure:"skip_preflight"`
	USDCMint      string `mapstructure:"usdc_mint"`
	BridgeChain   string `mapstructure:"bridge_chain"` // chain key in the bridge API
	ChainID       uint64 `mapstructure:"chain_id"`     // chain id in the bridge API
}

// EVMConfig holds EVM network parameters
type EVMConfig struct {
	RPCUrl       string `mapstructure:"rpc_url"`
	ChainID      int64  `mapstructure:"chain_id"`
	BridgeChain  string `mapstructure:"bridge_chain"`
	USDCContract string `mapstructure:"usdc_contract"`
}

// TokenConfig describes the token being moved
type TokenConfig struct {
	Symbol   string `mapstructure:"symbol"`
	Decimals int32  `mapstructure:"decimals"`
}

// BridgeConfig holds bridge API settings
type BridgeConfig struct {
	BaseURL            string `mapstructure:"base_url"`
	APIKey             string `mapstructure:"api_key"`
	ApprovalMultiplier int64  `mapstructure:"approval_multiplier"`
}

// KeysConfig holds credential file paths
type KeysConfig struct {
	Solana          string `mapstructure:"solana"`
	SolanaSecondary string `mapstructure:"solana_secondary"`
	EVM             string `mapstructure:"evm"`
	EVMSecondary    string `mapstructure:"evm_secondary"`
}

// Load reads configuration from defaults, an optional config file and
// environment variables
func Load(cfgFile string) (*Config, error) {
	return load(viper.New(), cfgFile)
}

func load(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".usdc-mover")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("USDC_MOVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// The config file is optional unless one was named explicitly
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, &types.ConfigError{Path: cfgFile, Err: err}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &types.ConfigError{Err: fmt.Errorf("failed to decode config: %w", err)}
	}

	if err := cfg.Validate(); err != nil {
		return nil, &types.ConfigError{Path: v.ConfigFileUsed(), Err: err}
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("solana.rpc_url", "https://api.mainnet-beta.solana.com")
	v.SetDefault("solana.commitment", "confirmed")
	v.SetDefault("solana.skip_preflight", false)
	v.SetDefault("solana.usdc_mint", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	v.SetDefault("solana.bridge_chain", "SOL")
	v.SetDefault("solana.chain_id", uint64(1151111081099710))

	v.SetDefault("evm.rpc_url", "https://mainnet.base.org")
	v.SetDefault("evm.chain_id", 8453)
	v.SetDefault("evm.bridge_chain", "BAS")
	v.SetDefault("evm.usdc_contract", "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913")

	v.SetDefault("token.symbol", "USDC")
	v.SetDefault("token.decimals", 6)

	v.SetDefault("bridge.base_url", "https://li.quest")
	v.SetDefault("bridge.api_key", "")
	v.SetDefault("bridge.approval_multiplier", 2)

	v.SetDefault("keys.solana", "sol-account1.key")
	v.SetDefault("keys.solana_secondary", "sol-account2.key")
	v.SetDefault("keys.evm", "eth-account1.key")
	v.SetDefault("keys.evm_secondary", "eth-account2.key")

	v.SetDefault("amount", "1")
	v.SetDefault("poll_interval", 2*time.Second)
}

// Validate checks required settings
func (c *Config) Validate() error {
	if c.Solana.RPCUrl == "" {
		return fmt.Errorf("solana.rpc_url is required")
	}
	if c.EVM.RPCUrl == "" {
		return fmt.Errorf("evm.rpc_url is required")
	}
	if c.EVM.ChainID <= 0 {
		return fmt.Errorf("evm.chain_id must be positive")
	}
	if c.Solana.USDCMint == "" || c.EVM.USDCContract == "" {
		return fmt.Errorf("token addresses for both chains are required")
	}
	if c.Token.Decimals < 0 || c.Token.Decimals > 18 {
		return fmt.Errorf("token.decimals must be between 0 and 18")
	}
	if c.Bridge.BaseURL == "" {
		return fmt.Errorf("bridge.base_url is required")
	}
	if c.Bridge.ApprovalMultiplier < 1 {
		return fmt.Errorf("bridge.approval_multiplier must be at least 1")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	return nil
}
