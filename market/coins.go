package market

// Coin is one row of CoinGecko's /coins/markets response, the shape the
// dashboard's coin table, trending strip and trade modal consume.
type Coin struct {
	ID             string  `json:"id"`
	Symbol         string  `json:"symbol"`
	Name           string  `json:"name"`
	Image          string  `json:"image"`
	CurrentPrice   float64 `json:"current_price"`
	MarketCap      float64 `json:"market_cap"`
	PriceChange24h float64 `json:"price_change_percentage_24h"`
}

// PriceMap indexes current unit prices by coin id.
type PriceMap map[string]float64

// Prices builds a PriceMap from a markets listing.
func Prices(coins []Coin) PriceMap {
	pm := make(PriceMap, len(coins))
	for _, c := range coins {
		pm[c.ID] = c.CurrentPrice
	}
	return pm
}
