package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cryptohub/cryptohub/ledger"
	"github.com/cryptohub/cryptohub/market"
	"github.com/cryptohub/cryptohub/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP API",
	Long: `Serve the JSON API the dashboard frontend consumes.

The server exposes wallet, holdings, transactions and portfolio endpoints
backed by the virtual trading wallet, plus coin listings proxied from
CoinGecko.

Example:
  cryptohub serve --config cryptohub.yaml`,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	currency, err := market.ParseCurrency(cfg.Wallet.Currency)
	if err != nil {
		return err
	}

	logger := newLogger()

	db, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	wallet := ledger.New(db,
		ledger.WithInitialBalance(cfg.Wallet.InitialBalance),
		ledger.WithLogger(logger),
	)

	timeout, err := cfg.Market.ParseTimeout()
	if err != nil {
		return fmt.Errorf("market timeout: %w", err)
	}
	mkt := market.NewClient(market.ClientConfig{
		BaseURL:           cfg.Market.BaseURL,
		APIKey:            cfg.Market.APIKey,
		RequestsPerMinute: cfg.Market.RequestsPerMinute,
		Timeout:           timeout,
	}, logger)

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := server.New(wallet, mkt, currency, logger)
	return srv.Run(addr)
}
