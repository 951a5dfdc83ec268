package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cryptohub/cryptohub/config"
	"github.com/cryptohub/cryptohub/storage"
)

var rootCmd = &cobra.Command{
	Use:   "cryptohub",
	Short: "A crypto dashboard backend with virtual trading on dummy money",
	Long: `CryptoHub serves live cryptocurrency market data and a simulated
trading wallet. All trades use dummy money; no real funds are involved.

It provides:
  - A JSON API for the dashboard frontend (prices, trending, portfolio)
  - A virtual wallet with buy/sell, average cost basis and a transaction log
  - Durable wallet state across restarts (file or SQLite backed)
  - CoinGecko market data with rate limiting and a circuit breaker`,
}

var cfgFile string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(func() {
		// Optional .env for the CoinGecko API key and friends.
		_ = godotenv.Load()
	})
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML or JSON)")
}

// loadConfig returns the configured settings, or defaults when no config
// file was given. COINGECKO_API_KEY in the environment wins over the file.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.LoadFromFile(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if key := os.Getenv("COINGECKO_API_KEY"); key != "" {
		cfg.Market.APIKey = key
	}
	return cfg, nil
}

func openStorage(cfg *config.Config) (storage.Store, error) {
	db, err := storage.Open(cfg.Storage.Type, cfg.Storage.Path())
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
}
