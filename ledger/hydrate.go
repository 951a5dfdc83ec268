package ledger

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/cryptohub/cryptohub/internal/id"
	"github.com/cryptohub/cryptohub/storage"
)

// Hydration is a schema boundary. Stored records may predate the current
// shape, so each list is decoded record by record: a record that fails to
// decode or validate is dropped with a warning instead of poisoning the whole
// key, and missing fields default.

func (s *Store) hydrate() {
	var balance float64
	if s.db.Load(storage.KeyBalance, &balance) && isFinite(balance) && balance >= 0 {
		s.balance = balance
	}

	var rawHoldings []json.RawMessage
	if s.db.Load(storage.KeyHoldings, &rawHoldings) {
		for _, raw := range rawHoldings {
			h, ok := decodeHolding(raw)
			if !ok {
				s.log.Warn().Msg("dropping unreadable holding record")
				continue
			}
			s.holdings = append(s.holdings, h)
		}
	}

	var rawTxns []json.RawMessage
	if s.db.Load(storage.KeyTransactions, &rawTxns) {
		for _, raw := range rawTxns {
			t, ok := decodeTransaction(raw)
			if !ok {
				s.log.Warn().Msg("dropping unreadable transaction record")
				continue
			}
			s.transactions = append(s.transactions, t)
		}
	}

	s.log.Debug().
		Float64("balance", s.balance).
		Int("holdings", len(s.holdings)).
		Int("transactions", len(s.transactions)).
		Msg("wallet hydrated")
}

func decodeHolding(raw json.RawMessage) (Holding, bool) {
	var h Holding
	if err := json.Unmarshal(raw, &h); err != nil {
		return Holding{}, false
	}
	if h.CoinID == "" {
		return Holding{}, false
	}
	if !isFinite(h.Quantity) || h.Quantity <= 0 {
		return Holding{}, false
	}
	if !isFinite(h.AvgPrice) || h.AvgPrice <= 0 {
		return Holding{}, false
	}
	return h, true
}

// storedTransaction tolerates the legacy shape where the id was a bare
// millisecond timestamp number.
type storedTransaction struct {
	ID       any       `json:"id"`
	Kind     string    `json:"type"`
	CoinID   string    `json:"coinId"`
	CoinName string    `json:"coinName"`
	Quantity float64   `json:"quantity"`
	Price    float64   `json:"price"`
	Total    float64   `json:"total"`
	Time     time.Time `json:"date"`
}

func decodeTransaction(raw json.RawMessage) (Transaction, bool) {
	var rec storedTransaction
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Transaction{}, false
	}

	kind := Kind(rec.Kind)
	if kind != Buy && kind != Sell {
		return Transaction{}, false
	}
	if rec.CoinID == "" {
		return Transaction{}, false
	}
	if !isFinite(rec.Quantity) || rec.Quantity <= 0 {
		return Transaction{}, false
	}
	if !isFinite(rec.Price) || rec.Price <= 0 {
		return Transaction{}, false
	}

	txn := Transaction{
		Kind:     kind,
		CoinID:   rec.CoinID,
		CoinName: rec.CoinName,
		Quantity: rec.Quantity,
		Price:    rec.Price,
		Total:    rec.Total,
		Time:     rec.Time,
	}
	if txn.Total <= 0 {
		txn.Total = txn.Quantity * txn.Price
	}

	switch v := rec.ID.(type) {
	case string:
		txn.ID = v
	case float64:
		txn.ID = strconv.FormatInt(int64(v), 10)
	}
	if txn.ID == "" {
		txn.ID = id.New()
	}

	return txn, true
}
