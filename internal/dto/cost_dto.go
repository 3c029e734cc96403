package dto

import (
	"time"

	"github.com/dealerledger/dealer_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateCostRequest defines the structure for booking a vehicle cost.
// ManualFxRate, when present, pins the conversion rate by hand and excludes
// the row from later resynchronization.
type CreateCostRequest struct {
	VehicleID    int64           `json:"vehicleId" binding:"required,gt=0"`
	CostType     string          `json:"costType" binding:"required"`
	CostDate     string          `json:"costDate" binding:"required,datetime=2006-01-02"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Currency     string          `json:"currency" binding:"required,len=3"`
	ManualFxRate decimal.Decimal `json:"manualFxRate"`
}

// CostResponse defines the structure for API responses containing a cost.
type CostResponse struct {
	CostID                    int64           `json:"costId"`
	VehicleID                 int64           `json:"vehicleId"`
	CostType                  string          `json:"costType"`
	CostDate                  string          `json:"costDate"`
	Amount                    decimal.Decimal `json:"amount"`
	Currency                  string          `json:"currency"`
	FxRateToBase              decimal.Decimal `json:"fxRateToBase"`
	AmountBase                decimal.Decimal `json:"amountBase"`
	BaseCurrencyAtTransaction string          `json:"baseCurrencyAtTransaction"`
	ManualFxRate              decimal.Decimal `json:"manualFxRate,omitempty"`
	CreatedAt                 time.Time       `json:"createdAt"`
}

// CostListResponse wraps a cost listing with its base-currency total.
type CostListResponse struct {
	Costs        []CostResponse  `json:"costs"`
	TotalBase    decimal.Decimal `json:"totalBase"`
	BaseCurrency string          `json:"baseCurrency"`
}

// ToCostResponse converts a domain.VehicleCost to its DTO.
func ToCostResponse(cost *domain.VehicleCost) CostResponse {
	return CostResponse{
		CostID:                    cost.CostID,
		VehicleID:                 cost.VehicleID,
		CostType:                  cost.CostType,
		CostDate:                  cost.CostDate.Format(time.DateOnly),
		Amount:                    cost.Amount,
		Currency:                  cost.Currency,
		FxRateToBase:              cost.FxRateToBase,
		AmountBase:                cost.AmountBase,
		BaseCurrencyAtTransaction: cost.BaseCurrencyAtTransaction,
		ManualFxRate:              cost.ManualFxRate,
		CreatedAt:                 cost.CreatedAt,
	}
}
