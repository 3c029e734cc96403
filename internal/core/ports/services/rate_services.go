package services

import (
	"context"
	"time"

	"github.com/dealerledger/dealer_ledger_app/internal/core/domain"
	portsrepo "github.com/dealerledger/dealer_ledger_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// RateProvider fetches a single exchange rate from the external FX source.
// Implementations wrap failures in apperrors.ErrRateProvider with a
// descriptive message; no retry policy is implied at this level.
type RateProvider interface {
	// GetLatestRate returns the provider's current quotation; the returned
	// date is the provider's current day.
	GetLatestRate(ctx context.Context, base, quote string) (*domain.ProviderRate, error)

	// GetHistoricalRate returns the quotation that applied on the given day.
	GetHistoricalRate(ctx context.Context, day time.Time, base, quote string) (*domain.ProviderRate, error)
}

// RateCacheSvcFacade resolves the exchange rate for a (base, quote, day)
// key, fetching from the external provider at most once per distinct key
// and persisting through the supplied store.
type RateCacheSvcFacade interface {
	// GetOrFetch returns the rate for the key. Cache hit is deterministic:
	// a stored rate is returned as-is, forever. On a miss the provider is
	// consulted ("latest" when day is the current day, "historical"
	// otherwise) and the result is upserted through store.
	//
	// Degradation: when a historical fetch fails, the provider's latest
	// rate is returned and stored labeled with the requested day
	// (source "latest-fallback"). A documented approximation, kept for
	// compatibility.
	GetOrFetch(ctx context.Context, store portsrepo.ExchangeRateRepositoryFacade, base, quote string, day time.Time) (decimal.Decimal, error)
}
