package market

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
)

// Currency is the display currency for formatted amounts. It selects the
// glyph and formatting only; it never enters wallet arithmetic.
type Currency string

const (
	INR Currency = "INR"
	USD Currency = "USD"
	NGN Currency = "NGN"
)

// Currencies lists the supported display currencies.
var Currencies = []Currency{INR, USD, NGN}

func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Currencies {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unsupported currency %q", s)
}

// Symbol returns the glyph shown alongside formatted amounts, e.g. ₹ for INR.
func (c Currency) Symbol() string {
	if cur := money.GetCurrency(string(c)); cur != nil {
		return cur.Grapheme
	}
	return string(c)
}

// Format renders an amount in c, e.g. ₹9,800.00.
func (c Currency) Format(amount float64) string {
	return money.NewFromFloat(amount, string(c)).Display()
}

// Lower is the vs_currency form CoinGecko query parameters expect.
func (c Currency) Lower() string {
	return strings.ToLower(string(c))
}
