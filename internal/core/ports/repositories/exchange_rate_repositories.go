package repositories

import (
	"context"
	"time"

	"github.com/dealerledger/dealer_ledger_app/internal/core/domain"
)

// ExchangeRateReader defines read operations for persisted exchange rates.
type ExchangeRateReader interface {
	// FindRate retrieves the rate stored for the exact
	// (base, quote, day) key, or apperrors.ErrNotFound.
	FindRate(ctx context.Context, baseCurrency, quoteCurrency string, day time.Time) (*domain.ExchangeRateRecord, error)
}

// ExchangeRateWriter defines write operations for persisted exchange rates.
type ExchangeRateWriter interface {
	// UpsertRate persists a rate with upsert-on-duplicate-key semantics so
	// concurrent misses for the same key converge to one stored row.
	UpsertRate(ctx context.Context, record domain.ExchangeRateRecord) error
}

// ExchangeRateRepositoryFacade combines all exchange-rate repository
// interfaces for clients that need both directions.
type ExchangeRateRepositoryFacade interface {
	ExchangeRateReader
	ExchangeRateWriter
}
