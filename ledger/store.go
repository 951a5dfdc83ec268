package ledger

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cryptohub/cryptohub/internal/id"
	"github.com/cryptohub/cryptohub/storage"
)

// Store is the sole authority over the virtual wallet: the dummy cash
// balance, the holdings and the transaction log. Every operation runs under
// the store lock, so no caller observes a partially applied trade.
//
// Mutations write through to the backing storage after the in-memory state
// has changed. A failed write is logged and swallowed: durability is
// best-effort, correctness of the in-session wallet is not.
type Store struct {
	mu           sync.Mutex
	balance      float64
	holdings     []Holding
	transactions []Transaction // newest first

	initial float64
	db      storage.Store
	log     zerolog.Logger
}

type Option func(*Store)

// WithInitialBalance overrides the starting (and reset) balance.
func WithInitialBalance(v float64) Option {
	return func(s *Store) {
		if isFinite(v) && v > 0 {
			s.initial = v
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New builds a Store hydrated from db. Absent or unreadable keys fall back to
// a fresh wallet: the initial balance, no holdings, no transactions.
func New(db storage.Store, opts ...Option) *Store {
	s := &Store{
		initial: InitialBalance,
		db:      db,
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	s.balance = s.initial
	s.hydrate()
	return s
}

// Buy purchases quantity units of asset at unitPrice, debiting the dummy
// balance. A first purchase creates the holding; a repeat purchase folds into
// the existing one, recomputing the weighted-average cost and keeping the
// original BuyTime. The cash debit, holding update and transaction append all
// land under one lock.
func (s *Store) Buy(asset Asset, quantity, unitPrice float64) (Transaction, error) {
	if err := validateTrade(quantity, unitPrice); err != nil {
		return Transaction{}, err
	}
	if asset.ID == "" {
		return Transaction{}, fmt.Errorf("%w: asset id is required", ErrInvalidAmount)
	}
	cost := quantity * unitPrice

	s.mu.Lock()
	defer s.mu.Unlock()

	if cost > s.balance {
		return Transaction{}, fmt.Errorf("%w: cost %.2f exceeds balance %.2f",
			ErrInsufficientFunds, cost, s.balance)
	}

	now := time.Now().UTC()

	if i := s.indexOf(asset.ID); i >= 0 {
		h := &s.holdings[i]
		totalQty := h.Quantity + quantity
		invested := h.Quantity*h.AvgPrice + cost
		h.AvgPrice = invested / totalQty
		h.Quantity = totalQty
	} else {
		s.holdings = append(s.holdings, Holding{
			CoinID:   asset.ID,
			Name:     asset.Name,
			Symbol:   asset.Symbol,
			Image:    asset.Image,
			Quantity: quantity,
			AvgPrice: unitPrice,
			BuyTime:  now,
		})
	}

	s.balance -= cost

	txn := Transaction{
		ID:       id.New(),
		Kind:     Buy,
		CoinID:   asset.ID,
		CoinName: asset.Name,
		Quantity: quantity,
		Price:    unitPrice,
		Total:    cost,
		Time:     now,
	}
	s.transactions = append([]Transaction{txn}, s.transactions...)

	s.saveBalance()
	s.saveHoldings()
	s.saveTransactions()

	return txn, nil
}

// Sell disposes of quantity units of the held coin at unitPrice, crediting
// the proceeds. Selling the whole position removes the holding; a partial
// sell reduces the quantity and leaves the average cost untouched. The
// transaction records the holding's stored name, not caller input.
func (s *Store) Sell(coinID string, quantity, unitPrice float64) (Transaction, error) {
	if err := validateTrade(quantity, unitPrice); err != nil {
		return Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(coinID)
	if i < 0 {
		return Transaction{}, fmt.Errorf("%w: %s", ErrNoSuchHolding, coinID)
	}

	h := s.holdings[i]
	if quantity > h.Quantity {
		return Transaction{}, fmt.Errorf("%w: have %v, asked for %v",
			ErrInsufficientHoldings, h.Quantity, quantity)
	}

	proceeds := quantity * unitPrice

	if quantity == h.Quantity {
		s.holdings = append(s.holdings[:i], s.holdings[i+1:]...)
	} else {
		s.holdings[i].Quantity -= quantity
	}

	s.balance += proceeds

	txn := Transaction{
		ID:       id.New(),
		Kind:     Sell,
		CoinID:   coinID,
		CoinName: h.Name,
		Quantity: quantity,
		Price:    unitPrice,
		Total:    proceeds,
		Time:     time.Now().UTC(),
	}
	s.transactions = append([]Transaction{txn}, s.transactions...)

	s.saveBalance()
	s.saveHoldings()
	s.saveTransactions()

	return txn, nil
}

// AddCash credits the dummy balance. The amount must be a finite positive
// number; deposits do not appear in the transaction log.
func (s *Store) AddCash(amount float64) error {
	if !isFinite(amount) || amount <= 0 {
		return fmt.Errorf("%w: deposit must be a positive amount", ErrInvalidAmount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.balance += amount
	s.saveBalance()
	return nil
}

// Reset restores the initial balance and clears holdings and transactions.
// It cannot fail and is idempotent.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.balance = s.initial
	s.holdings = nil
	s.transactions = nil

	s.saveBalance()
	s.saveHoldings()
	s.saveTransactions()
}

// Balance returns the current dummy cash balance.
func (s *Store) Balance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance
}

// Holdings returns a copy of the current holdings in acquisition order.
func (s *Store) Holdings() []Holding {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Holding, len(s.holdings))
	copy(out, s.holdings)
	return out
}

// Transactions returns a copy of the transaction log, newest first.
func (s *Store) Transactions() []Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// HoldingFor returns the holding for coinID, if any.
func (s *Store) HoldingFor(coinID string) (Holding, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(coinID); i >= 0 {
		return s.holdings[i], true
	}
	return Holding{}, false
}

// PortfolioValue marks every holding to the supplied current prices, falling
// back to the holding's average cost when no price is given for it. An empty
// wallet is worth 0.
func (s *Store) PortfolioValue(currentPrices map[string]float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, h := range s.holdings {
		price, ok := currentPrices[h.CoinID]
		if !ok || price <= 0 {
			price = h.AvgPrice
		}
		total += h.Quantity * price
	}
	return total
}

// TotalInvested sums quantity times average cost over all holdings.
func (s *Store) TotalInvested() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, h := range s.holdings {
		total += h.Quantity * h.AvgPrice
	}
	return total
}

// indexOf is called with the lock held.
func (s *Store) indexOf(coinID string) int {
	for i, h := range s.holdings {
		if h.CoinID == coinID {
			return i
		}
	}
	return -1
}

func (s *Store) saveBalance() {
	if err := s.db.Save(storage.KeyBalance, s.balance); err != nil {
		s.log.Warn().Err(err).Msg("persist balance failed")
	}
}

func (s *Store) saveHoldings() {
	holdings := s.holdings
	if holdings == nil {
		holdings = []Holding{}
	}
	if err := s.db.Save(storage.KeyHoldings, holdings); err != nil {
		s.log.Warn().Err(err).Msg("persist holdings failed")
	}
}

func (s *Store) saveTransactions() {
	transactions := s.transactions
	if transactions == nil {
		transactions = []Transaction{}
	}
	if err := s.db.Save(storage.KeyTransactions, transactions); err != nil {
		s.log.Warn().Err(err).Msg("persist transactions failed")
	}
}

func validateTrade(quantity, unitPrice float64) error {
	if !isFinite(quantity) || quantity <= 0 {
		return fmt.Errorf("%w: quantity must be a positive number", ErrInvalidAmount)
	}
	if !isFinite(unitPrice) || unitPrice <= 0 {
		return fmt.Errorf("%w: price must be a positive number", ErrInvalidAmount)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
