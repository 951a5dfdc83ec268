package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cryptohub/cryptohub/ledger"
	"github.com/cryptohub/cryptohub/market"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Inspect or modify the virtual wallet",
	Long: `Operate on the persisted virtual wallet directly.

Subcommands:
  show     - Print the balance, holdings and recent transactions
  deposit  - Add dummy money to the balance
  reset    - Restore the initial balance and clear holdings and history

Examples:
  cryptohub wallet show
  cryptohub wallet deposit 5000
  cryptohub wallet reset`,
}

var walletShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the wallet state",
	RunE:  runWalletShow,
}

var walletDepositCmd = &cobra.Command{
	Use:   "deposit <amount>",
	Short: "Add dummy money to the balance",
	Args:  cobra.ExactArgs(1),
	RunE:  runWalletDeposit,
}

var walletResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the wallet to its initial state",
	RunE:  runWalletReset,
}

func init() {
	rootCmd.AddCommand(walletCmd)
	walletCmd.AddCommand(walletShowCmd)
	walletCmd.AddCommand(walletDepositCmd)
	walletCmd.AddCommand(walletResetCmd)
}

// openWallet hydrates the ledger from the configured storage backend.
func openWallet() (*ledger.Store, market.Currency, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, "", nil, err
	}
	currency, err := market.ParseCurrency(cfg.Wallet.Currency)
	if err != nil {
		return nil, "", nil, err
	}
	db, err := openStorage(cfg)
	if err != nil {
		return nil, "", nil, err
	}
	wallet := ledger.New(db,
		ledger.WithInitialBalance(cfg.Wallet.InitialBalance),
		ledger.WithLogger(newLogger()),
	)
	return wallet, currency, func() { _ = db.Close() }, nil
}

func runWalletShow(cmd *cobra.Command, args []string) error {
	wallet, currency, closeDB, err := openWallet()
	if err != nil {
		return err
	}
	defer closeDB()

	fmt.Printf("Balance: %s (dummy money)\n", currency.Format(wallet.Balance()))
	fmt.Printf("Invested: %s\n\n", currency.Format(wallet.TotalInvested()))

	holdings := wallet.Holdings()
	if len(holdings) == 0 {
		fmt.Println("No holdings.")
	} else {
		fmt.Println("Holdings:")
		for _, h := range holdings {
			fmt.Printf("  %-12s %12.8f @ %s (since %s)\n",
				h.Name, h.Quantity, currency.Format(h.AvgPrice), h.BuyTime.Format("2006-01-02"))
		}
	}

	txns := wallet.Transactions()
	if len(txns) > 0 {
		fmt.Println("\nRecent transactions:")
		n := 10
		if len(txns) < n {
			n = len(txns)
		}
		for _, t := range txns[:n] {
			fmt.Printf("  %s %-4s %12.8f %-12s @ %s\n",
				t.Time.Format("2006-01-02 15:04"), t.Kind, t.Quantity, t.CoinName, currency.Format(t.Price))
		}
	}
	return nil
}

func runWalletDeposit(cmd *cobra.Command, args []string) error {
	amount, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q", args[0])
	}

	wallet, currency, closeDB, err := openWallet()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := wallet.AddCash(amount); err != nil {
		return err
	}
	fmt.Printf("✓ Deposited %s. New balance: %s\n",
		currency.Format(amount), currency.Format(wallet.Balance()))
	return nil
}

func runWalletReset(cmd *cobra.Command, args []string) error {
	wallet, currency, closeDB, err := openWallet()
	if err != nil {
		return err
	}
	defer closeDB()

	wallet.Reset()
	fmt.Printf("✓ Wallet reset. Balance: %s, no holdings, no transactions.\n",
		currency.Format(wallet.Balance()))
	return nil
}
