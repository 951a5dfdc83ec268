package ledger

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptohub/cryptohub/storage"
)

var bitcoin = Asset{ID: "bitcoin", Name: "Bitcoin", Symbol: "btc", Image: "btc.png"}
var ethereum = Asset{ID: "ethereum", Name: "Ethereum", Symbol: "eth", Image: "eth.png"}

func newWallet(t *testing.T) (*Store, *storage.Memory) {
	t.Helper()
	db := storage.NewMemory()
	return New(db), db
}

func TestFreshWalletStartsWithInitialBalance(t *testing.T) {
	t.Parallel()

	w, _ := newWallet(t)
	assert.Equal(t, float64(InitialBalance), w.Balance())
	assert.Empty(t, w.Holdings())
	assert.Empty(t, w.Transactions())
}

func TestBuyCreatesHolding(t *testing.T) {
	t.Parallel()

	w, _ := newWallet(t)

	txn, err := w.Buy(bitcoin, 2, 100)
	require.NoError(t, err)

	assert.Equal(t, Buy, txn.Kind)
	assert.Equal(t, "bitcoin", txn.CoinID)
	assert.Equal(t, "Bitcoin", txn.CoinName)
	assert.Equal(t, 200.0, txn.Total)
	assert.NotEmpty(t, txn.ID)

	assert.Equal(t, 9800.0, w.Balance())

	h, ok := w.HoldingFor("bitcoin")
	require.True(t, ok)
	assert.Equal(t, 2.0, h.Quantity)
	assert.Equal(t, 100.0, h.AvgPrice)
	assert.Equal(t, "btc", h.Symbol)
	assert.False(t, h.BuyTime.IsZero())
}

// The full walkthrough: buy, average in, partial sell, close out.
func TestTradeScenario(t *testing.T) {
	t.Parallel()

	w, _ := newWallet(t)

	_, err := w.Buy(bitcoin, 2, 100)
	require.NoError(t, err)
	assert.Equal(t, 9800.0, w.Balance())

	h, _ := w.HoldingFor("bitcoin")
	firstBuy := h.BuyTime

	_, err = w.Buy(bitcoin, 2, 200)
	require.NoError(t, err)
	assert.Equal(t, 9400.0, w.Balance())

	h, ok := w.HoldingFor("bitcoin")
	require.True(t, ok)
	assert.Equal(t, 4.0, h.Quantity)
	assert.Equal(t, 150.0, h.AvgPrice)
	assert.Equal(t, firstBuy, h.BuyTime, "first acquisition time survives later buys")

	_, err = w.Sell("bitcoin", 1, 300)
	require.NoError(t, err)
	assert.Equal(t, 9700.0, w.Balance())

	h, ok = w.HoldingFor("bitcoin")
	require.True(t, ok)
	assert.Equal(t, 3.0, h.Quantity)
	assert.Equal(t, 150.0, h.AvgPrice, "partial sell leaves average cost alone")

	_, err = w.Sell("bitcoin", 3, 100)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, w.Balance())

	_, ok = w.HoldingFor("bitcoin")
	assert.False(t, ok, "selling the whole position removes the holding")
	assert.Empty(t, w.Holdings())
	assert.Len(t, w.Transactions(), 4)
}

// Weighted-average invariant: after any sequence of buys, the average cost
// equals total investment over total quantity.
func TestAverageCostMatchesPurchaseHistory(t *testing.T) {
	t.Parallel()

	w, _ := newWallet(t)

	buys := []struct{ qty, price float64 }{
		{1, 100}, {3, 250}, {0.5, 90}, {2.25, 410}, {10, 33},
	}

	var totalQty, totalCost float64
	for _, b := range buys {
		_, err := w.Buy(ethereum, b.qty, b.price)
		require.NoError(t, err)
		totalQty += b.qty
		totalCost += b.qty * b.price
	}

	h, ok := w.HoldingFor("ethereum")
	require.True(t, ok)
	assert.Equal(t, totalQty, h.Quantity)
	assert.InDelta(t, totalCost/totalQty, h.AvgPrice, 1e-9)
	assert.InDelta(t, totalCost, w.TotalInvested(), 1e-9)
}

func TestBuyInsufficientFundsLeavesStateUnchanged(t *testing.T) {
	t.Parallel()

	w, _ := newWallet(t)

	_, err := w.Buy(bitcoin, 1, 15000)
	require.ErrorIs(t, err, ErrInsufficientFunds)

	assert.Equal(t, 10000.0, w.Balance())
	assert.Empty(t, w.Holdings())
	assert.Empty(t, w.Transactions())
}

func TestSellMoreThanHeldLeavesStateUnchanged(t *testing.T) {
	t.Parallel()

	w, _ := newWallet(t)
	_, err := w.Buy(bitcoin, 2, 100)
	require.NoError(t, err)

	_, err = w.Sell("bitcoin", 3, 100)
	require.ErrorIs(t, err, ErrInsufficientHoldings)

	assert.Equal(t, 9800.0, w.Balance())
	h, _ := w.HoldingFor("bitcoin")
	assert.Equal(t, 2.0, h.Quantity)
	assert.Len(t, w.Transactions(), 1)
}

func TestSellUnknownCoin(t *testing.T) {
	t.Parallel()

	w, _ := newWallet(t)

	_, err := w.Sell("dogecoin", 1, 10)
	require.ErrorIs(t, err, ErrNoSuchHolding)
	assert.Equal(t, 10000.0, w.Balance())
}

func TestSellRecordsStoredCoinName(t *testing.T) {
	t.Parallel()

	w, _ := newWallet(t)
	_, err := w.Buy(bitcoin, 1, 100)
	require.NoError(t, err)

	txn, err := w.Sell("bitcoin", 1, 120)
	require.NoError(t, err)
	assert.Equal(t, "Bitcoin", txn.CoinName)
}

func TestInvalidTradeInputs(t *testing.T) {
	t.Parallel()

	w, _ := newWallet(t)

	cases := []struct {
		name     string
		quantity float64
		price    float64
	}{
		{"zero quantity", 0, 100},
		{"negative quantity", -1, 100},
		{"zero price", 1, 0},
		{"negative price", 1, -5},
		{"nan quantity", math.NaN(), 100},
		{"inf price", 1, math.Inf(1)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := w.Buy(bitcoin, tc.quantity, tc.price)
			assert.ErrorIs(t, err, ErrInvalidAmount)

			_, err = w.Sell("bitcoin", tc.quantity, tc.price)
			assert.ErrorIs(t, err, ErrInvalidAmount)
		})
	}

	assert.Equal(t, 10000.0, w.Balance())
	assert.Empty(t, w.Transactions())
}

func TestBuyRequiresAssetID(t *testing.T) {
	t.Parallel()

	w, _ := newWallet(t)
	_, err := w.Buy(Asset{}, 1, 100)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestAddCash(t *testing.T) {
	t.Parallel()

	w, _ := newWallet(t)

	require.NoError(t, w.AddCash(2500))
	assert.Equal(t, 12500.0, w.Balance())

	assert.ErrorIs(t, w.AddCash(0), ErrInvalidAmount)
	assert.ErrorIs(t, w.AddCash(-10), ErrInvalidAmount)
	assert.ErrorIs(t, w.AddCash(math.NaN()), ErrInvalidAmount)
	assert.Equal(t, 12500.0, w.Balance())
}

func TestResetIsIdempotent(t *testing.T) {
	t.Parallel()

	w, _ := newWallet(t)
	_, err := w.Buy(bitcoin, 2, 100)
	require.NoError(t, err)
	require.NoError(t, w.AddCash(500))

	w.Reset()
	assert.Equal(t, 10000.0, w.Balance())
	assert.Empty(t, w.Holdings())
	assert.Empty(t, w.Transactions())

	w.Reset()
	assert.Equal(t, 10000.0, w.Balance())
	assert.Empty(t, w.Holdings())
	assert.Empty(t, w.Transactions())
}

func TestTransactionsNewestFirst(t *testing.T) {
	t.Parallel()

	w, _ := newWallet(t)
	_, err := w.Buy(bitcoin, 1, 100)
	require.NoError(t, err)
	_, err = w.Buy(ethereum, 1, 50)
	require.NoError(t, err)
	_, err = w.Sell("bitcoin", 1, 120)
	require.NoError(t, err)

	txns := w.Transactions()
	require.Len(t, txns, 3)
	assert.Equal(t, Sell, txns[0].Kind)
	assert.Equal(t, "ethereum", txns[1].CoinID)
	assert.Equal(t, "bitcoin", txns[2].CoinID)
}

func TestPortfolioValue(t *testing.T) {
	t.Parallel()

	w, _ := newWallet(t)
	assert.Equal(t, 0.0, w.PortfolioValue(map[string]float64{"bitcoin": 100}))

	_, err := w.Buy(bitcoin, 2, 100)
	require.NoError(t, err)
	_, err = w.Buy(ethereum, 4, 50)
	require.NoError(t, err)

	// Live price for bitcoin only; ethereum values at average cost.
	value := w.PortfolioValue(map[string]float64{"bitcoin": 150})
	assert.Equal(t, 2*150.0+4*50.0, value)

	// No prices at all: everything at average cost.
	assert.Equal(t, 400.0, w.PortfolioValue(nil))
}

func TestWriteThroughPersistsEveryMutation(t *testing.T) {
	t.Parallel()

	w, db := newWallet(t)

	_, err := w.Buy(bitcoin, 2, 100)
	require.NoError(t, err)

	var balance float64
	require.True(t, db.Load(storage.KeyBalance, &balance))
	assert.Equal(t, 9800.0, balance)

	var holdings []Holding
	require.True(t, db.Load(storage.KeyHoldings, &holdings))
	require.Len(t, holdings, 1)
	assert.Equal(t, "bitcoin", holdings[0].CoinID)

	var txns []Transaction
	require.True(t, db.Load(storage.KeyTransactions, &txns))
	assert.Len(t, txns, 1)

	w.Reset()
	require.True(t, db.Load(storage.KeyBalance, &balance))
	assert.Equal(t, 10000.0, balance)
	require.True(t, db.Load(storage.KeyHoldings, &holdings))
	assert.Empty(t, holdings)
}

func TestStateSurvivesRehydration(t *testing.T) {
	t.Parallel()

	db := storage.NewMemory()

	w := New(db)
	_, err := w.Buy(bitcoin, 2, 100)
	require.NoError(t, err)
	_, err = w.Sell("bitcoin", 1, 150)
	require.NoError(t, err)

	// A second store over the same backend sees the same wallet.
	reloaded := New(db)
	assert.Equal(t, w.Balance(), reloaded.Balance())
	assert.Equal(t, w.Holdings(), reloaded.Holdings())
	assert.Equal(t, w.Transactions(), reloaded.Transactions())
}

func TestWithInitialBalance(t *testing.T) {
	t.Parallel()

	w := New(storage.NewMemory(), WithInitialBalance(50000))
	assert.Equal(t, 50000.0, w.Balance())

	w.Reset()
	assert.Equal(t, 50000.0, w.Balance())
}

// flakyStore fails every Save. Loads report absent so hydration starts fresh.
type flakyStore struct {
	saves int
}

func (f *flakyStore) Load(key string, out any) bool { return false }

func (f *flakyStore) Save(key string, v any) error {
	f.saves++
	return errors.New("disk full")
}

func (f *flakyStore) Close() error { return nil }

// Durability is best-effort: a failed write must never surface as a failed
// trade or undo the in-memory mutation.
func TestSaveFailureDoesNotFailMutations(t *testing.T) {
	t.Parallel()

	db := &flakyStore{}
	w := New(db)

	_, err := w.Buy(bitcoin, 2, 100)
	require.NoError(t, err)
	assert.Equal(t, 9800.0, w.Balance())

	h, ok := w.HoldingFor("bitcoin")
	require.True(t, ok)
	assert.Equal(t, 2.0, h.Quantity)
	assert.Len(t, w.Transactions(), 1)

	require.NoError(t, w.AddCash(500))
	assert.Equal(t, 10300.0, w.Balance())

	_, err = w.Sell("bitcoin", 2, 150)
	require.NoError(t, err)
	assert.Equal(t, 10600.0, w.Balance())
	assert.Empty(t, w.Holdings())

	w.Reset()
	assert.Equal(t, 10000.0, w.Balance())
	assert.Empty(t, w.Holdings())
	assert.Empty(t, w.Transactions())

	assert.Greater(t, db.saves, 0, "mutations still attempt the write-through")
}

func TestRejectedOperationsPersistNothing(t *testing.T) {
	t.Parallel()

	w, db := newWallet(t)

	_, err := w.Buy(bitcoin, 1, 15000)
	require.ErrorIs(t, err, ErrInsufficientFunds)

	var balance float64
	assert.False(t, db.Load(storage.KeyBalance, &balance), "no write-through for a rejected trade")
}
