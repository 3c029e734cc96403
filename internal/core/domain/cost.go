package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// VehicleCost is a cost booked against a vehicle: purchase price, repair,
// transport, customs and so on. Monetary fields are the decimal projection
// of Money values; the conversion snapshot fields record the rate that
// applied when the cost was booked and are deliberately never recomputed
// from current tenant settings.
type VehicleCost struct {
	CostID    int64     `json:"costId"`
	TenantID  int64     `json:"tenantId"`
	VehicleID int64     `json:"vehicleId"`
	CostType  string    `json:"costType"`
	CostDate  time.Time `json:"costDate"`

	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`

	// Conversion snapshot captured at booking time.
	FxRateToBase              decimal.Decimal `json:"fxRateToBase"`
	AmountBase                decimal.Decimal `json:"amountBase"`
	BaseCurrencyAtTransaction string          `json:"baseCurrencyAtTransaction"`

	// ManualFxRate, when non-zero, is an operator-entered override. Rows
	// carrying one are excluded from historical resynchronization.
	ManualFxRate decimal.Decimal `json:"manualFxRate"`

	AuditFields
}

// HasManualRate reports whether an operator pinned the rate by hand.
func (c VehicleCost) HasManualRate() bool {
	return !c.ManualFxRate.IsZero()
}

// Vehicle is the minimal vehicle record the core needs: costs hang off it
// and resync batches are scoped to it. The full vehicle schema belongs to
// the resource controllers.
type Vehicle struct {
	VehicleID int64  `json:"vehicleId"`
	TenantID  int64  `json:"tenantId"`
	Vin       string `json:"vin"`
	Make      string `json:"make"`
	Model     string `json:"model"`
	AuditFields
}
