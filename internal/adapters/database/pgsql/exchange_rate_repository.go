package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/dealerledger/dealer_ledger_app/internal/apperrors"
	"github.com/dealerledger/dealer_ledger_app/internal/core/domain"
	portsrepo "github.com/dealerledger/dealer_ledger_app/internal/core/ports/repositories"
)

// GuardExchangeRateRepository persists exchange rates through the guard's
// raw surface. Rates are global facts, not tenant rows, so both statements
// opt out of the tenant check explicitly; they still ride the same storage
// transport as all other writes.
type GuardExchangeRateRepository struct {
	guard portsrepo.TenantGuard
}

// NewExchangeRateRepository creates a GuardExchangeRateRepository over the
// given guard.
func NewExchangeRateRepository(guard portsrepo.TenantGuard) *GuardExchangeRateRepository {
	return &GuardExchangeRateRepository{guard: guard}
}

// FindRate retrieves the rate stored for the exact (base, quote, day) key.
func (r *GuardExchangeRateRepository) FindRate(ctx context.Context, baseCurrency, quoteCurrency string, day time.Time) (*domain.ExchangeRateRecord, error) {
	query := `
		SELECT base_currency, quote_currency, rate_date, rate, source, created_at, last_updated_at
		FROM exchange_rates
		WHERE base_currency = $1 AND quote_currency = $2 AND rate_date = $3
	`
	rows, err := r.guard.Query(ctx, query, baseCurrency, quoteCurrency, domain.RateDay(day))
	if err != nil {
		return nil, fmt.Errorf("error finding exchange rate: %w", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return rowToExchangeRate(rows[0])
}

// UpsertRate persists a rate idempotently: concurrent misses for the same
// key converge to one stored row instead of erroring on the unique key.
func (r *GuardExchangeRateRepository) UpsertRate(ctx context.Context, record domain.ExchangeRateRecord) error {
	stmt := `
		INSERT INTO exchange_rates (base_currency, quote_currency, rate_date, rate, source, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (base_currency, quote_currency, rate_date)
		DO UPDATE SET rate = EXCLUDED.rate, source = EXCLUDED.source, last_updated_at = EXCLUDED.last_updated_at
	`
	now := time.Now().UTC()
	params := []any{
		record.BaseCurrency, record.QuoteCurrency, domain.RateDay(record.RateDate),
		record.Rate, record.Source, now, now,
	}
	// exchange_rates is not tenant-owned; skip the tenant check explicitly.
	if _, err := r.guard.ExecuteRaw(ctx, stmt, params, true); err != nil {
		return fmt.Errorf("error upserting exchange rate: %w", err)
	}
	return nil
}

func rowToExchangeRate(row portsrepo.Row) (*domain.ExchangeRateRecord, error) {
	base, err := rowString(row, "base_currency")
	if err != nil {
		return nil, err
	}
	quote, err := rowString(row, "quote_currency")
	if err != nil {
		return nil, err
	}
	rateDate, err := rowTime(row, "rate_date")
	if err != nil {
		return nil, err
	}
	rate, err := rowDecimal(row, "rate")
	if err != nil {
		return nil, err
	}
	source, err := rowString(row, "source")
	if err != nil {
		return nil, err
	}
	record := &domain.ExchangeRateRecord{
		BaseCurrency:  base,
		QuoteCurrency: quote,
		RateDate:      rateDate,
		Rate:          rate,
		Source:        source,
	}
	if createdAt, err := rowTime(row, "created_at"); err == nil {
		record.CreatedAt = createdAt
	}
	if updatedAt, err := rowTime(row, "last_updated_at"); err == nil {
		record.LastUpdatedAt = updatedAt
	}
	return record, nil
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*GuardExchangeRateRepository)(nil)
