package dto

import (
	"time"

	"github.com/dealerledger/dealer_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExchangeRateResponse defines the structure for API responses containing a
// resolved exchange rate.
type ExchangeRateResponse struct {
	BaseCurrency  string          `json:"baseCurrency"`
	QuoteCurrency string          `json:"quoteCurrency"`
	RateDate      string          `json:"rateDate"` // YYYY-MM-DD
	Rate          decimal.Decimal `json:"rate"`
	Source        string          `json:"source"`
}

// ToExchangeRateResponse converts a domain.ExchangeRateRecord to its DTO.
func ToExchangeRateResponse(record *domain.ExchangeRateRecord) ExchangeRateResponse {
	return ExchangeRateResponse{
		BaseCurrency:  record.BaseCurrency,
		QuoteCurrency: record.QuoteCurrency,
		RateDate:      record.RateDate.Format(time.DateOnly),
		Rate:          record.Rate,
		Source:        record.Source,
	}
}

// ConvertRequest defines the query parameters of the conversion endpoint.
type ConvertRequest struct {
	Amount       decimal.Decimal `form:"amount" binding:"required"`
	FromCurrency string          `form:"from" binding:"required,len=3"`
	ToCurrency   string          `form:"to" binding:"required,len=3"`
	Date         string          `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// ConvertResponse carries a converted amount alongside the rate that was
// applied.
type ConvertResponse struct {
	Amount       decimal.Decimal `json:"amount"`
	FromCurrency string          `json:"fromCurrency"`
	ToCurrency   string          `json:"toCurrency"`
	Rate         decimal.Decimal `json:"rate"`
	Converted    decimal.Decimal `json:"converted"`
	RateDate     string          `json:"rateDate"`
}
