package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SessionStore is a key-value store scoped to one client session.
type SessionStore interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// SessionProvider hands out stores scoped to a session id.
type SessionProvider interface {
	Session(id string) SessionStore
}

// Cache stores whole values with a TTL. Set replaces any previous entry.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Flush(ctx context.Context) error
}

type Charge struct {
	Amount        decimal.Decimal
	Currency      string
	CardNumber    string
	ExpiryDate    string
	CVC           string
	CustomerName  string
	CustomerEmail string
}

// PaymentGateway charges a card and returns the gateway transaction id.
type PaymentGateway interface {
	Charge(ctx context.Context, c Charge) (transactionID string, err error)
}
