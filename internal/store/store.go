package store

import (
	"context"
	"errors"
)

var (
	ErrKeyNotFound = errors.New("key not found")
)

// Keys used by the transaction engine. Collections live as whole JSON
// documents under fixed keys; per-key writes are atomic in every driver, which
// matches the single-session ownership model. Only the invoice counter needs
// cross-terminal atomicity, which Incr provides.
const (
	KeyCatalog        = "catalog:products"
	KeyHoldSales      = "holdsales"
	KeyInvoices       = "invoices"
	KeyInvoiceCounter = "counter:invoice"
	KeySessionTokens  = "session:tokens"
	KeyUsers          = "users"
)

// Store is the injected persistence capability: a key-addressed byte store
// with an atomic counter. Any failure other than a missing key must surface
// to the caller untouched; the engine performs no silent retries.
type Store interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value atomically.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Incr atomically increments the counter stored under key and returns the
	// new value. A missing counter starts at zero, so the first call returns 1.
	// The read-increment-write must be a single atomic unit with respect to
	// concurrent terminals sharing the store.
	Incr(ctx context.Context, key string) (int64, error)
	// ResetCounter sets the counter under key back to zero.
	ResetCounter(ctx context.Context, key string) error
	// Close releases driver resources.
	Close() error
}
