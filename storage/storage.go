package storage

import "fmt"

// Logical keys under which wallet state persists. The prefix matches the keys
// the browser build wrote to localStorage, so an exported dump loaded into the
// file store hydrates as-is.
const (
	KeyBalance      = "cryptoHub_dummyBalance"
	KeyHoldings     = "cryptoHub_holdings"
	KeyTransactions = "cryptoHub_transactions"
)

// Store is a durable key-value store for JSON-encoded wallet state.
//
// Durability is best-effort: a failed Save is the caller's to log and swallow,
// and corrupted data surfaces as an absent key, never as an error.
type Store interface {
	// Load decodes the value stored under key into out and reports whether a
	// usable value was found. Absent keys and values that fail to decode both
	// return false, leaving whatever fallback the caller prepared in place.
	Load(key string, out any) bool

	// Save encodes v and stores it under key, replacing any previous value.
	Save(key string, v any) error

	Close() error
}

// Open builds a Store from a backend name, as configured in storage.type.
func Open(kind, path string) (Store, error) {
	switch kind {
	case "memory":
		return NewMemory(), nil
	case "file":
		return NewFile(path)
	case "sqlite":
		return NewSQLite(path)
	}
	return nil, fmt.Errorf("unknown storage type %q", kind)
}
