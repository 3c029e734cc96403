package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/dealerledger/dealer_ledger_app/internal/apperrors"
	"github.com/dealerledger/dealer_ledger_app/internal/core/domain"
	portsrepo "github.com/dealerledger/dealer_ledger_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// GuardCostRepository implements cost persistence on top of the guard's
// structured surface, so every statement is tenant scoped by construction.
type GuardCostRepository struct {
	guard portsrepo.TenantGuard
}

// NewCostRepository creates a GuardCostRepository over the given guard.
func NewCostRepository(guard portsrepo.TenantGuard) *GuardCostRepository {
	return &GuardCostRepository{guard: guard}
}

// FindCostByID retrieves one cost of the guard's tenant.
func (r *GuardCostRepository) FindCostByID(ctx context.Context, costID int64) (*domain.VehicleCost, error) {
	row, err := r.guard.SelectOne(ctx, "vehicle_costs", portsrepo.Conditions{"id": costID}, nil)
	if err != nil {
		return nil, err
	}
	return rowToCost(row)
}

// ListCostsByVehicle returns all costs of one vehicle, oldest first.
func (r *GuardCostRepository) ListCostsByVehicle(ctx context.Context, vehicleID int64) ([]domain.VehicleCost, error) {
	rows, err := r.guard.Select(ctx, "vehicle_costs",
		portsrepo.Conditions{"vehicle_id": vehicleID},
		&portsrepo.SelectOptions{OrderBy: "cost_date, id"},
	)
	if err != nil {
		return nil, err
	}
	return rowsToCosts(rows)
}

// ListResyncCandidates returns costs in the date range that carry no manual
// rate override. The range predicate is beyond the structured surface, so
// this uses the raw escape hatch with the tenant id bound explicitly.
func (r *GuardCostRepository) ListResyncCandidates(ctx context.Context, vehicleID int64, from, to time.Time) ([]domain.VehicleCost, error) {
	query := `
		SELECT * FROM vehicle_costs
		WHERE tenant_id = $1
		  AND vehicle_id = $2
		  AND cost_date BETWEEN $3 AND $4
		  AND (manual_fx_rate IS NULL OR manual_fx_rate = 0)
		ORDER BY cost_date, id
	`
	rows, err := r.guard.Query(ctx, query, r.guard.TenantID(), vehicleID, from, to)
	if err != nil {
		return nil, fmt.Errorf("error listing resync candidates: %w", err)
	}
	return rowsToCosts(rows)
}

// SaveCost verifies the vehicle belongs to the guard's tenant and inserts
// the cost inside one transaction. The guard stamps tenant_id itself; a
// spoofed value in the payload is ignored.
func (r *GuardCostRepository) SaveCost(ctx context.Context, cost domain.VehicleCost) (int64, error) {
	data := map[string]any{
		"vehicle_id":                   cost.VehicleID,
		"cost_type":                    cost.CostType,
		"cost_date":                    cost.CostDate,
		"amount":                       cost.Amount,
		"currency":                     cost.Currency,
		"fx_rate_to_base":              cost.FxRateToBase,
		"amount_base":                  cost.AmountBase,
		"base_currency_at_transaction": cost.BaseCurrencyAtTransaction,
		"created_at":                   cost.CreatedAt,
		"created_by":                   cost.CreatedBy,
		"last_updated_at":              cost.LastUpdatedAt,
		"last_updated_by":              cost.LastUpdatedBy,
	}
	if !cost.ManualFxRate.IsZero() {
		data["manual_fx_rate"] = cost.ManualFxRate
	}

	var costID int64
	err := r.guard.Transaction(ctx, func(ctx context.Context, tx portsrepo.TenantGuard) error {
		if _, err := tx.SelectOne(ctx, "vehicles", portsrepo.Conditions{"id": cost.VehicleID}, nil); err != nil {
			return fmt.Errorf("vehicle %d: %w", cost.VehicleID, err)
		}
		id, err := tx.Insert(ctx, "vehicle_costs", data)
		if err != nil {
			return err
		}
		costID = id
		return nil
	})
	if err != nil {
		return 0, err
	}
	return costID, nil
}

// UpdateCostFxSnapshot rewrites the conversion snapshot of one row.
func (r *GuardCostRepository) UpdateCostFxSnapshot(ctx context.Context, costID int64, fxRateToBase, amountBase decimal.Decimal, baseCurrency string) error {
	affected, err := r.guard.Update(ctx, "vehicle_costs",
		map[string]any{
			"fx_rate_to_base":              fxRateToBase,
			"amount_base":                  amountBase,
			"base_currency_at_transaction": baseCurrency,
			"last_updated_at":              time.Now().UTC(),
		},
		portsrepo.Conditions{"id": costID},
	)
	if err != nil {
		return fmt.Errorf("error updating fx snapshot for cost %d: %w", costID, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: cost %d", apperrors.ErrNotFound, costID)
	}
	return nil
}

// DeleteCost removes one cost of the guard's tenant.
func (r *GuardCostRepository) DeleteCost(ctx context.Context, costID int64) error {
	affected, err := r.guard.Delete(ctx, "vehicle_costs", portsrepo.Conditions{"id": costID})
	if err != nil {
		return fmt.Errorf("error deleting cost %d: %w", costID, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: cost %d", apperrors.ErrNotFound, costID)
	}
	return nil
}

func rowsToCosts(rows []portsrepo.Row) ([]domain.VehicleCost, error) {
	costs := make([]domain.VehicleCost, 0, len(rows))
	for _, row := range rows {
		cost, err := rowToCost(row)
		if err != nil {
			return nil, err
		}
		costs = append(costs, *cost)
	}
	return costs, nil
}

func rowToCost(row portsrepo.Row) (*domain.VehicleCost, error) {
	id, err := rowInt64(row, "id")
	if err != nil {
		return nil, err
	}
	tenantID, err := rowInt64(row, "tenant_id")
	if err != nil {
		return nil, err
	}
	vehicleID, err := rowInt64(row, "vehicle_id")
	if err != nil {
		return nil, err
	}
	costType, err := rowString(row, "cost_type")
	if err != nil {
		return nil, err
	}
	costDate, err := rowTime(row, "cost_date")
	if err != nil {
		return nil, err
	}
	amount, err := rowDecimal(row, "amount")
	if err != nil {
		return nil, err
	}
	currency, err := rowString(row, "currency")
	if err != nil {
		return nil, err
	}
	fxRate, err := rowDecimal(row, "fx_rate_to_base")
	if err != nil {
		return nil, err
	}
	amountBase, err := rowDecimal(row, "amount_base")
	if err != nil {
		return nil, err
	}
	manualRate, err := rowDecimal(row, "manual_fx_rate")
	if err != nil {
		return nil, err
	}
	baseCurrency, err := rowString(row, "base_currency_at_transaction")
	if err != nil {
		return nil, err
	}

	cost := &domain.VehicleCost{
		CostID:                    id,
		TenantID:                  tenantID,
		VehicleID:                 vehicleID,
		CostType:                  costType,
		CostDate:                  costDate,
		Amount:                    amount,
		Currency:                  currency,
		FxRateToBase:              fxRate,
		AmountBase:                amountBase,
		BaseCurrencyAtTransaction: baseCurrency,
		ManualFxRate:              manualRate,
	}
	if createdAt, err := rowTime(row, "created_at"); err == nil {
		cost.CreatedAt = createdAt
	}
	if updatedAt, err := rowTime(row, "last_updated_at"); err == nil {
		cost.LastUpdatedAt = updatedAt
	}
	return cost, nil
}

var _ portsrepo.CostRepositoryFacade = (*GuardCostRepository)(nil)
