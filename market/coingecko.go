package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is CoinGecko's public API root.
const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// Client fetches market data from CoinGecko. Requests are paced by a rate
// limiter sized for the free-tier budget and guarded by a circuit breaker so
// a flapping upstream fails fast instead of stalling every caller.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

type ClientConfig struct {
	BaseURL           string
	APIKey            string
	RequestsPerMinute int
	Timeout           time.Duration
}

func NewClient(cfg ClientConfig, logger zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(
			rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)),
			cfg.RequestsPerMinute,
		),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "coingecko",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 5
			},
		}),
		log: logger,
	}
}

// Markets returns the top coins by market cap priced in currency.
func (c *Client) Markets(ctx context.Context, currency Currency, perPage int) ([]Coin, error) {
	if perPage <= 0 || perPage > 250 {
		perPage = 100
	}
	q := url.Values{
		"vs_currency": {currency.Lower()},
		"order":       {"market_cap_desc"},
		"per_page":    {strconv.Itoa(perPage)},
		"page":        {"1"},
		"sparkline":   {"false"},
	}

	var coins []Coin
	if err := c.get(ctx, "/coins/markets", q, &coins); err != nil {
		return nil, err
	}
	return coins, nil
}

// Trending returns the short gainers list the dashboard's trending strip
// renders.
func (c *Client) Trending(ctx context.Context, currency Currency) ([]Coin, error) {
	q := url.Values{
		"vs_currency":             {currency.Lower()},
		"order":                   {"gecko_desc"},
		"per_page":                {"10"},
		"page":                    {"1"},
		"sparkline":               {"false"},
		"price_change_percentage": {"24h"},
	}

	var coins []Coin
	if err := c.get(ctx, "/coins/markets", q, &coins); err != nil {
		return nil, err
	}
	return coins, nil
}

// SimplePrices returns current unit prices for the given coin ids. Callers
// treat a failure as "no live prices" and fall back to average cost; it never
// blocks a trade.
func (c *Client) SimplePrices(ctx context.Context, ids []string, currency Currency) (PriceMap, error) {
	if len(ids) == 0 {
		return PriceMap{}, nil
	}
	q := url.Values{
		"ids":           {strings.Join(ids, ",")},
		"vs_currencies": {currency.Lower()},
	}

	var resp map[string]map[string]float64
	if err := c.get(ctx, "/simple/price", q, &resp); err != nil {
		return nil, err
	}

	pm := make(PriceMap, len(resp))
	for coinID, byCurrency := range resp {
		pm[coinID] = byCurrency[currency.Lower()]
	}
	return pm, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	_, err := c.breaker.Execute(func() (any, error) {
		u := c.baseURL + path
		if len(query) > 0 {
			u += "?" + query.Encode()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		if c.apiKey != "" {
			req.Header.Set("x-cg-demo-api-key", c.apiKey)
		}

		start := time.Now()
		resp, err := c.http.Do(req)
		if err != nil {
			c.log.Error().Err(err).Str("path", path).Msg("coingecko request failed")
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			c.log.Error().Str("path", path).Int("status", resp.StatusCode).
				Msg("coingecko request rejected")
			return nil, fmt.Errorf("coingecko: HTTP %d", resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("coingecko: decode %s: %w", path, err)
		}

		c.log.Debug().Str("path", path).Dur("duration", time.Since(start)).
			Msg("coingecko request ok")
		return nil, nil
	})
	return err
}
