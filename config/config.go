// Package config loads nftcreator settings from an optional YAML file and
// NFTCREATOR_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"

	"github.com/onchainnft/nftcreator/library"
)

const (
	EnvPrefix = "NFTCREATOR"

	ErrInvalidConfig = library.Error("invalid config")
)

type Config struct {
	Chain       ChainConfig       `mapstructure:"chain"`
	Contracts   ContractsConfig   `mapstructure:"contracts"`
	Reconcile   ReconcileConfig   `mapstructure:"reconcile"`
	Marketplace MarketplaceConfig `mapstructure:"marketplace"`
	RPC         ListenConfig      `mapstructure:"rpc"`
	Metrics     ListenConfig      `mapstructure:"metrics"`
	Log         LogConfig         `mapstructure:"log"`
}

type ChainConfig struct {
	RPCURL  string `mapstructure:"rpc_url"`
	ChainID uint64 `mapstructure:"chain_id"`
	// PrivateKey is hex without 0x. Empty means read-only: listing works,
	// submitting fails with no connected account.
	PrivateKey string `mapstructure:"private_key"`
	// Account is listed when no private key is set.
	Account        string        `mapstructure:"account"`
	ReceiptTimeout time.Duration `mapstructure:"receipt_timeout"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
}

type ContractsConfig struct {
	Factory  string `mapstructure:"factory"`
	Template string `mapstructure:"template"`
}

type ReconcileConfig struct {
	StartBlock    uint64 `mapstructure:"start_block"`
	MaxBlockRange uint64 `mapstructure:"max_block_range"`
	// CachePath enables incremental reconciliation backed by MDBX.
	CachePath string `mapstructure:"cache_path"`
}

type MarketplaceConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Network string `mapstructure:"network"`
}

type ListenConfig struct {
	Listen string `mapstructure:"listen"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("chain.rpc_url", "https://rpc.sepolia.org")
	v.SetDefault("chain.chain_id", 11155111)
	v.SetDefault("chain.private_key", "")
	v.SetDefault("chain.account", "")
	v.SetDefault("chain.receipt_timeout", 2*time.Minute)
	v.SetDefault("chain.poll_interval", 2*time.Second)

	v.SetDefault("contracts.factory", "")
	v.SetDefault("contracts.template", "")

	v.SetDefault("reconcile.start_block", 6635572)
	v.SetDefault("reconcile.max_block_range", 50000)
	v.SetDefault("reconcile.cache_path", "")

	v.SetDefault("marketplace.base_url", "https://testnets.opensea.io")
	v.SetDefault("marketplace.network", "sepolia")

	v.SetDefault("rpc.listen", ":8546")
	v.SetDefault("metrics.listen", ":9100")

	v.SetDefault("log.level", "info")
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return v
}

// MakeDefault returns the built-in defaults, ignoring files and environment.
func MakeDefault() Config {
	v := viper.New()
	setDefaults(v)

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		panic(err)
	}

	return c
}

// Load reads path (if not empty) over the defaults, then the environment.
// A missing file at an explicit path is an error.
func Load(path string) (Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%w: read %s: %w", ErrInvalidConfig, path, err)
		}
	} else {
		v.SetConfigName("nftcreator")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return c, c.Validate()
}

func (c Config) Validate() error {
	for key, s := range map[string]string{
		"contracts.factory":  c.Contracts.Factory,
		"contracts.template": c.Contracts.Template,
		"chain.account":      c.Chain.Account,
	} {
		if s != "" && !common.IsHexAddress(s) {
			return fmt.Errorf("%w: %s is not an address: %q", ErrInvalidConfig, key, s)
		}
	}

	if c.Chain.ReceiptTimeout <= 0 || c.Chain.PollInterval <= 0 {
		return fmt.Errorf("%w: chain.receipt_timeout and chain.poll_interval must be positive", ErrInvalidConfig)
	}

	return nil
}

// Address parses a configured address; empty yields the zero address.
func Address(s string) common.Address {
	if s == "" {
		return common.Address{}
	}

	return common.HexToAddress(s)
}
