package ledger

import "errors"

// Trade failures are expected, recoverable, user-facing outcomes. Callers
// match them with errors.Is and surface the message; none of them abort the
// caller or leave the wallet partially mutated.
var (
	ErrInsufficientFunds    = errors.New("insufficient dummy balance")
	ErrInsufficientHoldings = errors.New("insufficient coins to sell")
	ErrNoSuchHolding        = errors.New("coin not held")
	ErrInvalidAmount        = errors.New("invalid amount")
)
