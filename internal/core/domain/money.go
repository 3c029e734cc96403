package domain

import (
	"fmt"
	"strings"

	"github.com/dealerledger/dealer_ledger_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Money is a fixed-point monetary amount: an integer count of minor units
// tagged with an ISO 4217 currency code. All arithmetic stays in integer
// minor units; decimal values only appear at construction, scaling, and
// projection boundaries, so there is no binary floating-point drift.
//
// Amounts in different currencies cannot be added or subtracted; crossing a
// currency boundary is the explicit Convert operation.
type Money struct {
	minorUnits int64
	currency   string
}

// zeroDecimalCurrencies have no minor subdivision (1 minor unit per whole unit).
var zeroDecimalCurrencies = map[string]struct{}{
	"BIF": {}, "CLP": {}, "DJF": {}, "GNF": {}, "ISK": {}, "JPY": {},
	"KMF": {}, "KRW": {}, "PYG": {}, "RWF": {}, "UGX": {}, "UYI": {},
	"VND": {}, "VUV": {}, "XAF": {}, "XOF": {}, "XPF": {},
}

// threeDecimalCurrencies subdivide into thousandths.
var threeDecimalCurrencies = map[string]struct{}{
	"BHD": {}, "IQD": {}, "JOD": {}, "KWD": {}, "LYD": {}, "OMR": {}, "TND": {},
}

// CurrencyExponent returns the number of decimal digits in the minor unit of
// the given currency code (0 for JPY, 3 for KWD, 2 otherwise).
func CurrencyExponent(currencyCode string) int32 {
	code := strings.ToUpper(currencyCode)
	if _, ok := zeroDecimalCurrencies[code]; ok {
		return 0
	}
	if _, ok := threeDecimalCurrencies[code]; ok {
		return 3
	}
	return 2
}

// NewMoney constructs a Money from a decimal value, rounding once to the
// nearest minor unit of the currency. Rounding mode is half away from zero
// and is applied exactly once, at construction.
func NewMoney(value decimal.Decimal, currencyCode string) (Money, error) {
	code, err := normalizeCurrencyCode(currencyCode)
	if err != nil {
		return Money{}, err
	}
	exp := CurrencyExponent(code)
	minor := value.Shift(exp).Round(0)
	return Money{minorUnits: minor.IntPart(), currency: code}, nil
}

// NewMoneyFromMinorUnits constructs a Money directly from an integer count
// of minor units. No rounding occurs.
func NewMoneyFromMinorUnits(minorUnits int64, currencyCode string) (Money, error) {
	code, err := normalizeCurrencyCode(currencyCode)
	if err != nil {
		return Money{}, err
	}
	return Money{minorUnits: minorUnits, currency: code}, nil
}

// ZeroMoney returns the zero amount in the given currency. It is the
// identity element for Add and the result of summing an empty list.
func ZeroMoney(currencyCode string) (Money, error) {
	return NewMoneyFromMinorUnits(0, currencyCode)
}

func normalizeCurrencyCode(currencyCode string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(currencyCode))
	if len(code) != 3 {
		return "", fmt.Errorf("%w: currency code must be 3 letters, got %q", apperrors.ErrValidation, currencyCode)
	}
	return code, nil
}

// MinorUnits returns the raw integer minor-unit value.
func (m Money) MinorUnits() int64 {
	return m.minorUnits
}

// CurrencyCode returns the ISO currency tag.
func (m Money) CurrencyCode() string {
	return m.currency
}

// Decimal projects the amount back to a decimal value in whole currency
// units. This is the representation persisted by consumers; Money itself is
// never stored.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.minorUnits, -CurrencyExponent(m.currency))
}

// String renders the amount as "<value> <CODE>", e.g. "25.00 USD".
func (m Money) String() string {
	return m.Decimal().StringFixed(CurrencyExponent(m.currency)) + " " + m.currency
}

// Add returns m + other. Both amounts must carry the same currency tag.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: cannot add %s to %s", apperrors.ErrCurrencyMismatch, other.currency, m.currency)
	}
	return Money{minorUnits: m.minorUnits + other.minorUnits, currency: m.currency}, nil
}

// Subtract returns m - other. Both amounts must carry the same currency tag.
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: cannot subtract %s from %s", apperrors.ErrCurrencyMismatch, other.currency, m.currency)
	}
	return Money{minorUnits: m.minorUnits - other.minorUnits, currency: m.currency}, nil
}

// MultiplyScalar scales the amount by a real-valued factor, re-rounding to
// the nearest minor unit.
func (m Money) MultiplyScalar(factor decimal.Decimal) Money {
	minor := decimal.NewFromInt(m.minorUnits).Mul(factor).Round(0)
	return Money{minorUnits: minor.IntPart(), currency: m.currency}
}

// DivideScalar divides the amount by a real-valued divisor, re-rounding to
// the nearest minor unit. A zero divisor is an error, never a panic.
func (m Money) DivideScalar(divisor decimal.Decimal) (Money, error) {
	if divisor.IsZero() {
		return Money{}, fmt.Errorf("%w: division by zero", apperrors.ErrValidation)
	}
	minor := decimal.NewFromInt(m.minorUnits).Div(divisor).Round(0)
	return Money{minorUnits: minor.IntPart(), currency: m.currency}, nil
}

// Percentage returns amount * (percent / 100) with the usual rounding
// discipline, e.g. Percentage(18) on 150.00 yields 27.00.
func (m Money) Percentage(percent decimal.Decimal) Money {
	return m.MultiplyScalar(percent.Div(decimal.NewFromInt(100)))
}

// Convert re-expresses the amount in another currency at the given rate,
// constructing a fresh amount in the destination currency's own minor-unit
// scale. Converting a currency to itself is the identity and short-circuits
// before the rate is inspected, so a zero or negative rate cannot corrupt a
// same-currency amount. For a genuine conversion the rate must be strictly
// positive.
func (m Money) Convert(toCurrencyCode string, rate decimal.Decimal) (Money, error) {
	toCode, err := normalizeCurrencyCode(toCurrencyCode)
	if err != nil {
		return Money{}, err
	}
	if m.currency == toCode {
		return m, nil
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return Money{}, fmt.Errorf("%w: rate %s for %s->%s", apperrors.ErrInvalidRate, rate.String(), m.currency, toCode)
	}
	return NewMoney(m.Decimal().Mul(rate), toCode)
}

// Compare returns -1, 0, or 1 as m is less than, equal to, or greater than
// other. Both amounts must carry the same currency tag.
func (m Money) Compare(other Money) (int, error) {
	if m.currency != other.currency {
		return 0, fmt.Errorf("%w: cannot compare %s with %s", apperrors.ErrCurrencyMismatch, m.currency, other.currency)
	}
	switch {
	case m.minorUnits < other.minorUnits:
		return -1, nil
	case m.minorUnits > other.minorUnits:
		return 1, nil
	default:
		return 0, nil
	}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.minorUnits == 0 }

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool { return m.minorUnits > 0 }

// IsNegative reports whether the amount is strictly less than zero.
func (m Money) IsNegative() bool { return m.minorUnits < 0 }

// Abs returns the absolute value of the amount.
func (m Money) Abs() Money {
	if m.minorUnits < 0 {
		return Money{minorUnits: -m.minorUnits, currency: m.currency}
	}
	return m
}

// Negate returns the amount with its sign flipped.
func (m Money) Negate() Money {
	return Money{minorUnits: -m.minorUnits, currency: m.currency}
}

// SumMoney adds a list of amounts in the given currency. An empty list sums
// to zero. Since all arithmetic is integer minor units, the result does not
// depend on the order of the list.
func SumMoney(currencyCode string, amounts []Money) (Money, error) {
	total, err := ZeroMoney(currencyCode)
	if err != nil {
		return Money{}, err
	}
	for _, a := range amounts {
		total, err = total.Add(a)
		if err != nil {
			return Money{}, err
		}
	}
	return total, nil
}
