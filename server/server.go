package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/cryptohub/cryptohub/ledger"
	"github.com/cryptohub/cryptohub/market"
)

// Server exposes the wallet and market data as the JSON API the dashboard
// frontend consumes. It holds no state of its own: every trade goes through
// the ledger store, every listing through the market client.
type Server struct {
	wallet   *ledger.Store
	market   *market.Client
	currency market.Currency
	log      zerolog.Logger
}

// New wires a Server. mkt may be nil, in which case market routes return 503
// and portfolio valuation falls back to average cost.
func New(wallet *ledger.Store, mkt *market.Client, currency market.Currency, logger zerolog.Logger) *Server {
	return &Server{
		wallet:   wallet,
		market:   mkt,
		currency: currency,
		log:      logger,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/wallet", s.handleWallet).Methods(http.MethodGet)
	api.HandleFunc("/wallet/deposit", s.handleDeposit).Methods(http.MethodPost)
	api.HandleFunc("/wallet/reset", s.handleReset).Methods(http.MethodPost)
	api.HandleFunc("/holdings", s.handleHoldings).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.handleTransactions).Methods(http.MethodGet)
	api.HandleFunc("/portfolio", s.handlePortfolio).Methods(http.MethodGet)
	api.HandleFunc("/trade/buy", s.handleBuy).Methods(http.MethodPost)
	api.HandleFunc("/trade/sell", s.handleSell).Methods(http.MethodPost)
	api.HandleFunc("/coins", s.handleCoins).Methods(http.MethodGet)
	api.HandleFunc("/coins/trending", s.handleTrending).Methods(http.MethodGet)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	return r
}

// Run serves on addr and blocks until SIGINT/SIGTERM or a listen failure,
// then shuts down gracefully.
func (s *Server) Run(addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	s.log.Info().Str("addr", addr).Msg("http server listening")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errc:
		return err
	case <-sig:
	}

	s.log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
