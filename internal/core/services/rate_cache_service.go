package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dealerledger/dealer_ledger_app/internal/apperrors"
	"github.com/dealerledger/dealer_ledger_app/internal/core/domain"
	portsrepo "github.com/dealerledger/dealer_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/dealerledger/dealer_ledger_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// RateCacheService is the cache-aside resolver for historical exchange
// rates: persistent lookup first, external provider only on a miss, result
// written back idempotently. A stored key is ground truth forever; there is
// no TTL and no invalidation, because a past day's rate does not change
// after the fact.
//
// Two concurrent misses for the same key may both reach the provider; the
// upsert makes the stored value converge, so this is waste, not corruption.
type RateCacheService struct {
	provider portssvc.RateProvider
	logger   *slog.Logger
	now      func() time.Time
}

// RateCacheOption customizes a RateCacheService.
type RateCacheOption func(*RateCacheService)

// WithClock overrides the service's notion of "now", used to decide whether
// a requested day needs a latest or a historical quotation. Intended for
// tests.
func WithClock(now func() time.Time) RateCacheOption {
	return func(s *RateCacheService) {
		s.now = now
	}
}

// NewRateCacheService creates a RateCacheService over the given provider.
func NewRateCacheService(provider portssvc.RateProvider, logger *slog.Logger, opts ...RateCacheOption) *RateCacheService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &RateCacheService{
		provider: provider,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrFetch returns the rate for (base, quote, day), consulting the
// external provider at most once per distinct key over the system's
// lifetime and persisting through store.
//
// When a historical fetch fails, the provider's latest rate is used and
// stored labeled with the requested day (source "latest-fallback"). The
// stored "historical" value can therefore in rare cases actually be the
// fetch day's rate. This approximation is preserved, pending product
// sign-off on hard-failing instead.
func (s *RateCacheService) GetOrFetch(ctx context.Context, store portsrepo.ExchangeRateRepositoryFacade, base, quote string, day time.Time) (decimal.Decimal, error) {
	base = strings.ToUpper(base)
	quote = strings.ToUpper(quote)
	if len(base) != 3 || len(quote) != 3 {
		return decimal.Zero, fmt.Errorf("%w: currency codes must be 3 letters", apperrors.ErrValidation)
	}
	day = domain.RateDay(day)

	cached, err := store.FindRate(ctx, base, quote, day)
	if err == nil {
		return cached.Rate, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return decimal.Zero, fmt.Errorf("failed to look up cached rate: %w", err)
	}

	source := domain.RateSourceProvider
	var quotation *domain.ProviderRate
	if day.Equal(domain.RateDay(s.now())) {
		quotation, err = s.provider.GetLatestRate(ctx, base, quote)
	} else {
		quotation, err = s.provider.GetHistoricalRate(ctx, day, base, quote)
		if err != nil {
			s.logger.Warn("historical rate fetch failed, falling back to latest",
				slog.String("base", base),
				slog.String("quote", quote),
				slog.String("date", day.Format(time.DateOnly)),
				slog.String("error", err.Error()),
			)
			quotation, err = s.provider.GetLatestRate(ctx, base, quote)
			source = domain.RateSourceLatestFallback
		}
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch rate %s/%s for %s: %w", base, quote, day.Format(time.DateOnly), err)
	}

	if quotation.Rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("%w: provider returned %s for %s/%s", apperrors.ErrInvalidRate, quotation.Rate.String(), base, quote)
	}

	record := domain.ExchangeRateRecord{
		BaseCurrency:  base,
		QuoteCurrency: quote,
		RateDate:      day, // always filed under the requested day, also on fallback
		Rate:          quotation.Rate,
		Source:        source,
	}
	if err := store.UpsertRate(ctx, record); err != nil {
		return decimal.Zero, fmt.Errorf("failed to persist fetched rate: %w", err)
	}
	return quotation.Rate, nil
}

var _ portssvc.RateCacheSvcFacade = (*RateCacheService)(nil)
