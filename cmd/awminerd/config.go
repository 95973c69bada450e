package main

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/yourusername/awminer/chain"
	"github.com/yourusername/awminer/miner"
)

// Config is the daemon configuration, loaded from an optional YAML file
// with AWMINER_-prefixed environment overrides.
type Config struct {
	Listen    string `mapstructure:"listen"`
	AutoStart bool   `mapstructure:"auto_start"`

	RPC struct {
		Endpoints []string `mapstructure:"endpoints"`
	} `mapstructure:"rpc"`

	Mining struct {
		Concurrency int    `mapstructure:"concurrency"`
		Contract    string `mapstructure:"contract"`
		DefaultLand string `mapstructure:"default_land"`
	} `mapstructure:"mining"`

	Solver struct {
		Command []string `mapstructure:"command"`
	} `mapstructure:"solver"`

	Signer struct {
		Command []string `mapstructure:"command"`
	} `mapstructure:"signer"`

	Accounts struct {
		File string `mapstructure:"file"`
		Env  string `mapstructure:"env"`
	} `mapstructure:"accounts"`
}

// LoadConfig reads the config file at path (optional) and the environment.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("listen", ":8000")
	v.SetDefault("auto_start", true)
	v.SetDefault("rpc.endpoints", chain.DefaultEndpoints)
	v.SetDefault("mining.concurrency", miner.DefaultConcurrency)
	v.SetDefault("mining.contract", chain.FederationAccount)
	v.SetDefault("mining.default_land", chain.DefaultLandID)
	v.SetDefault("accounts.file", ".env")
	v.SetDefault("accounts.env", "BOT_ACCOUNTS")

	v.SetEnvPrefix("AWMINER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
