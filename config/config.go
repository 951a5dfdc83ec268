package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cryptohub/cryptohub/market"
)

// Config represents the complete service configuration
type Config struct {
	Wallet  WalletConfig  `json:"wallet" yaml:"wallet"`
	Storage StorageConfig `json:"storage" yaml:"storage"`
	Market  MarketConfig  `json:"market" yaml:"market"`
	Server  ServerConfig  `json:"server" yaml:"server"`
}

// WalletConfig contains virtual wallet initialization parameters
type WalletConfig struct {
	InitialBalance float64 `json:"initial_balance" yaml:"initial_balance"`
	Currency       string  `json:"currency" yaml:"currency"`
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Type   string `json:"type" yaml:"type"` // "memory", "file" or "sqlite"
	Dir    string `json:"dir,omitempty" yaml:"dir,omitempty"`
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// Path returns the backend-specific location argument for storage.Open.
func (s StorageConfig) Path() string {
	if s.Type == "sqlite" {
		return s.DBPath
	}
	return s.Dir
}

// MarketConfig contains CoinGecko client parameters
type MarketConfig struct {
	BaseURL           string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	APIKey            string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	RequestsPerMinute int    `json:"requests_per_minute,omitempty" yaml:"requests_per_minute,omitempty"`
	Timeout           string `json:"timeout,omitempty" yaml:"timeout,omitempty"` // e.g. "15s"
}

// ParseTimeout converts the timeout string to time.Duration
func (m MarketConfig) ParseTimeout() (time.Duration, error) {
	if m.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(m.Timeout)
}

// ServerConfig contains HTTP server parameters
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on content)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Wallet.InitialBalance <= 0 {
		return fmt.Errorf("wallet.initial_balance must be positive")
	}
	if _, err := market.ParseCurrency(c.Wallet.Currency); err != nil {
		return fmt.Errorf("wallet.currency: %w", err)
	}
	switch c.Storage.Type {
	case "memory":
	case "file":
		if c.Storage.Dir == "" {
			return fmt.Errorf("storage.dir required for file type")
		}
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("storage.db_path required for sqlite type")
		}
	default:
		return fmt.Errorf("storage.type must be 'memory', 'file' or 'sqlite'")
	}
	if c.Market.RequestsPerMinute < 0 {
		return fmt.Errorf("market.requests_per_minute must not be negative")
	}
	if _, err := c.Market.ParseTimeout(); err != nil {
		return fmt.Errorf("market.timeout: %w", err)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Wallet: WalletConfig{
			InitialBalance: 10000,
			Currency:       "INR",
		},
		Storage: StorageConfig{
			Type: "file",
			Dir:  "./cryptohub-data",
		},
		Market: MarketConfig{
			BaseURL:           market.DefaultBaseURL,
			RequestsPerMinute: 10,
			Timeout:           "15s",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}
