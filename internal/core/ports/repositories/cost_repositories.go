package repositories

import (
	"context"
	"time"

	"github.com/dealerledger/dealer_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CostReader defines read operations for vehicle costs, always scoped to
// the tenant of the underlying guard.
type CostReader interface {
	FindCostByID(ctx context.Context, costID int64) (*domain.VehicleCost, error)
	ListCostsByVehicle(ctx context.Context, vehicleID int64) ([]domain.VehicleCost, error)
	// ListResyncCandidates returns costs for the vehicle in [from, to]
	// that carry no manual rate override, ordered by cost date.
	ListResyncCandidates(ctx context.Context, vehicleID int64, from, to time.Time) ([]domain.VehicleCost, error)
}

// CostWriter defines write operations for vehicle costs.
type CostWriter interface {
	// SaveCost checks the vehicle belongs to the tenant and inserts the
	// cost, atomically, returning the generated identifier. A vehicle of
	// another tenant is indistinguishable from a missing one:
	// apperrors.ErrNotFound either way.
	SaveCost(ctx context.Context, cost domain.VehicleCost) (int64, error)
	// UpdateCostFxSnapshot rewrites the stored rate and the base-currency
	// snapshot of one cost row. Returns apperrors.ErrNotFound when the row
	// does not exist for this tenant.
	UpdateCostFxSnapshot(ctx context.Context, costID int64, fxRateToBase, amountBase decimal.Decimal, baseCurrency string) error
	DeleteCost(ctx context.Context, costID int64) error
}

// CostRepositoryFacade combines all cost repository interfaces.
type CostRepositoryFacade interface {
	CostReader
	CostWriter
}

// TenantSettingsReader exposes the per-tenant configuration the financial
// write paths depend on.
type TenantSettingsReader interface {
	// GetSettings returns the settings row of the guard's tenant, or
	// apperrors.ErrNotFound when the tenant has none yet.
	GetSettings(ctx context.Context) (*domain.TenantSettings, error)
}
