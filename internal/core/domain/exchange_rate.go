package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rate sources recorded on persisted exchange rates.
const (
	// RateSourceProvider marks a rate fetched from the external FX API for
	// the exact date requested.
	RateSourceProvider = "provider"
	// RateSourceLatestFallback marks a rate stored under a historical date
	// after the historical fetch failed and the provider's latest rate was
	// used instead. An explicit approximation; see the rate cache docs.
	RateSourceLatestFallback = "latest-fallback"
)

// ExchangeRateRecord is the authoritative historical rate for one currency
// pair on one calendar day. Natural key is (BaseCurrency, QuoteCurrency,
// RateDate); rows are immutable once written apart from idempotent re-writes
// of the same computed value, and are never deleted by normal operation.
//
// Exchange rates are global facts, not tenant-scoped data, but they are
// written through the same storage transport as everything else.
type ExchangeRateRecord struct {
	BaseCurrency  string          `json:"baseCurrency"`
	QuoteCurrency string          `json:"quoteCurrency"`
	RateDate      time.Time       `json:"rateDate"` // date precision, UTC
	Rate          decimal.Decimal `json:"rate"`
	Source        string          `json:"source"`
	AuditFields
}

// ProviderRate is a single quotation returned by the external FX source.
// Date is the day the quotation actually applies to, which for a "latest"
// request is the provider's current day.
type ProviderRate struct {
	Base  string
	Quote string
	Rate  decimal.Decimal
	Date  time.Time
}

// RateDay truncates a timestamp to its UTC calendar day, the granularity all
// rate lookups and persistence use.
func RateDay(t time.Time) time.Time {
	return time.Date(t.UTC().Year(), t.UTC().Month(), t.UTC().Day(), 0, 0, 0, 0, time.UTC)
}
