package ledger

import "time"

// InitialBalance is the dummy cash a fresh wallet starts with, and the amount
// a reset restores.
const InitialBalance = 10000

// Kind distinguishes the two sides of a trade.
type Kind string

const (
	Buy  Kind = "BUY"
	Sell Kind = "SELL"
)

// Asset is the coin metadata a buy copies into a new holding. The caller
// supplies it from whatever market listing it is rendering.
type Asset struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Image  string `json:"image"`
}

// Holding is the user's current position in one coin.
//
// JSON field names match the records the browser build wrote to localStorage,
// so previously persisted state hydrates unchanged.
type Holding struct {
	CoinID   string  `json:"coinId"`
	Name     string  `json:"name"`
	Symbol   string  `json:"symbol"`
	Image    string  `json:"image"`
	Quantity float64 `json:"quantity"`

	// AvgPrice is the weighted-average purchase price per unit. Buys move it,
	// sells leave it alone (average cost basis).
	AvgPrice float64 `json:"buyPrice"`

	// BuyTime is the first acquisition, preserved across later buys.
	BuyTime time.Time `json:"buyTime"`
}

// Transaction is an immutable record of one executed buy or sell.
type Transaction struct {
	ID       string    `json:"id"`
	Kind     Kind      `json:"type"`
	CoinID   string    `json:"coinId"`
	CoinName string    `json:"coinName"`
	Quantity float64   `json:"quantity"`
	Price    float64   `json:"price"`
	Total    float64   `json:"total"`
	Time     time.Time `json:"date"`
}
