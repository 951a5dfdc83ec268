package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cryptohub/cryptohub/ledger"
	"github.com/cryptohub/cryptohub/market"
)

type tradeRequest struct {
	CoinID   string  `json:"coinId"`
	Name     string  `json:"name"`
	Symbol   string  `json:"symbol"`
	Image    string  `json:"image"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
}

type tradeResponse struct {
	Success     bool                `json:"success"`
	Message     string              `json:"message"`
	Transaction *ledger.Transaction `json:"transaction,omitempty"`
	Balance     float64             `json:"balance"`
}

type walletResponse struct {
	Balance          float64 `json:"balance"`
	FormattedBalance string  `json:"formattedBalance"`
	Currency         string  `json:"currency"`
	Symbol           string  `json:"symbol"`
	Holdings         int     `json:"holdings"`
}

type portfolioResponse struct {
	Invested     float64 `json:"invested"`
	Value        float64 `json:"value"`
	ProfitLoss   float64 `json:"profitLoss"`
	ProfitLossPc float64 `json:"profitLossPercent"`
	LivePrices   bool    `json:"livePrices"`
}

type depositRequest struct {
	Amount float64 `json:"amount"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeTradeError maps the ledger's expected failures onto user-facing
// responses. Anything else is a bad request body, not a server fault.
func (s *Server) writeTradeError(w http.ResponseWriter, err error) {
	status := http.StatusUnprocessableEntity
	if errors.Is(err, ledger.ErrInvalidAmount) {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, tradeResponse{
		Success: false,
		Message: err.Error(),
		Balance: s.wallet.Balance(),
	})
}

func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request) {
	balance := s.wallet.Balance()
	writeJSON(w, http.StatusOK, walletResponse{
		Balance:          balance,
		FormattedBalance: s.currency.Format(balance),
		Currency:         string(s.currency),
		Symbol:           s.currency.Symbol(),
		Holdings:         len(s.wallet.Holdings()),
	})
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, tradeResponse{Success: false, Message: "invalid request body", Balance: s.wallet.Balance()})
		return
	}
	if err := s.wallet.AddCash(req.Amount); err != nil {
		s.writeTradeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tradeResponse{
		Success: true,
		Message: fmt.Sprintf("Added %s to your wallet", s.currency.Format(req.Amount)),
		Balance: s.wallet.Balance(),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.wallet.Reset()
	writeJSON(w, http.StatusOK, tradeResponse{
		Success: true,
		Message: "Virtual trading reset",
		Balance: s.wallet.Balance(),
	})
}

func (s *Server) handleHoldings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.wallet.Holdings())
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.wallet.Transactions())
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, tradeResponse{Success: false, Message: "invalid request body", Balance: s.wallet.Balance()})
		return
	}

	txn, err := s.wallet.Buy(ledger.Asset{
		ID:     req.CoinID,
		Name:   req.Name,
		Symbol: req.Symbol,
		Image:  req.Image,
	}, req.Quantity, req.Price)
	if err != nil {
		s.writeTradeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tradeResponse{
		Success:     true,
		Message:     fmt.Sprintf("Bought %v %s with dummy money!", req.Quantity, strings.ToUpper(req.Symbol)),
		Transaction: &txn,
		Balance:     s.wallet.Balance(),
	})
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, tradeResponse{Success: false, Message: "invalid request body", Balance: s.wallet.Balance()})
		return
	}

	// The confirmation names what the wallet holds, not what the caller sent.
	held, _ := s.wallet.HoldingFor(req.CoinID)

	txn, err := s.wallet.Sell(req.CoinID, req.Quantity, req.Price)
	if err != nil {
		s.writeTradeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tradeResponse{
		Success:     true,
		Message:     fmt.Sprintf("Sold %v %s for dummy money!", req.Quantity, strings.ToUpper(held.Symbol)),
		Transaction: &txn,
		Balance:     s.wallet.Balance(),
	})
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	holdings := s.wallet.Holdings()

	// Best-effort live prices; a fetch failure falls back to average cost and
	// never fails the request.
	var prices market.PriceMap
	if len(holdings) > 0 && s.market != nil {
		ids := make([]string, 0, len(holdings))
		for _, h := range holdings {
			ids = append(ids, h.CoinID)
		}
		pm, err := s.market.SimplePrices(r.Context(), ids, s.currency)
		if err != nil {
			s.log.Warn().Err(err).Msg("live prices unavailable, valuing at average cost")
		} else {
			prices = pm
		}
	}

	invested := s.wallet.TotalInvested()
	value := s.wallet.PortfolioValue(prices)
	pl := value - invested
	plPct := 0.0
	if invested > 0 {
		plPct = pl / invested * 100
	}

	writeJSON(w, http.StatusOK, portfolioResponse{
		Invested:     invested,
		Value:        value,
		ProfitLoss:   pl,
		ProfitLossPc: plPct,
		LivePrices:   prices != nil,
	})
}

func (s *Server) handleCoins(w http.ResponseWriter, r *http.Request) {
	if s.market == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "market data not configured"})
		return
	}
	coins, err := s.market.Markets(r.Context(), s.currency, 100)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "market data unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, coins)
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	if s.market == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "market data not configured"})
		return
	}
	coins, err := s.market.Trending(r.Context(), s.currency)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "market data unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, coins)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"time": time.Now().UTC().Format(time.RFC3339),
	})
}
