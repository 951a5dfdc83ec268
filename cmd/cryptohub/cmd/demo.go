package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cryptohub/cryptohub/ledger"
	"github.com/cryptohub/cryptohub/market"
	"github.com/cryptohub/cryptohub/storage"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a scripted virtual trading walkthrough",
	Long: `Walk through a scripted trading session against an in-memory wallet.

Shows the basic workflow of:
  1. Starting with the initial dummy balance
  2. Buying a coin, then averaging in at a higher price
  3. Selling part of the position at a profit
  4. Hitting the insufficient-funds guard
  5. Reading back the transaction log`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Virtual Trading Demo (dummy money) ===")
	fmt.Println()

	currency := market.USD
	wallet := ledger.New(storage.NewMemory())

	fmt.Printf("Starting balance: %s\n\n", currency.Format(wallet.Balance()))

	btc := ledger.Asset{ID: "bitcoin", Name: "Bitcoin", Symbol: "btc"}

	fmt.Println("Buying 0.10 BTC @ 45,000...")
	if _, err := wallet.Buy(btc, 0.10, 45_000); err != nil {
		return err
	}
	fmt.Println("Buying 0.10 BTC @ 55,000...")
	if _, err := wallet.Buy(btc, 0.10, 55_000); err != nil {
		return err
	}

	h, _ := wallet.HoldingFor("bitcoin")
	fmt.Printf("\nHolding: %.2f BTC, average cost %s\n", h.Quantity, currency.Format(h.AvgPrice))
	fmt.Printf("Balance: %s\n\n", currency.Format(wallet.Balance()))

	fmt.Println("Selling 0.05 BTC @ 60,000...")
	if _, err := wallet.Sell("bitcoin", 0.05, 60_000); err != nil {
		return err
	}

	h, _ = wallet.HoldingFor("bitcoin")
	fmt.Printf("Holding: %.2f BTC, average cost %s (unchanged by the sell)\n",
		h.Quantity, currency.Format(h.AvgPrice))
	fmt.Printf("Balance: %s\n\n", currency.Format(wallet.Balance()))

	fmt.Println("Trying to buy 1.00 BTC @ 60,000 (more than the balance)...")
	_, err := wallet.Buy(btc, 1.00, 60_000)
	if errors.Is(err, ledger.ErrInsufficientFunds) {
		fmt.Printf("Rejected as expected: %v\n", err)
		fmt.Printf("Balance untouched: %s\n\n", currency.Format(wallet.Balance()))
	} else if err != nil {
		return err
	}

	fmt.Println("Transaction log (newest first):")
	for _, t := range wallet.Transactions() {
		fmt.Printf("  %-4s %8.2f %s @ %s = %s\n",
			t.Kind, t.Quantity, t.CoinName, currency.Format(t.Price), currency.Format(t.Total))
	}

	value := wallet.PortfolioValue(market.PriceMap{"bitcoin": 60_000})
	fmt.Printf("\nPortfolio value @ 60,000: %s\n", currency.Format(value))
	fmt.Printf("Total invested: %s\n", currency.Format(wallet.TotalInvested()))

	return nil
}
