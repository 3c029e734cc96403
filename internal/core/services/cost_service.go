package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dealerledger/dealer_ledger_app/internal/apperrors"
	"github.com/dealerledger/dealer_ledger_app/internal/core/domain"
	portsrepo "github.com/dealerledger/dealer_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/dealerledger/dealer_ledger_app/internal/core/ports/services"
	"github.com/dealerledger/dealer_ledger_app/internal/dto"
	"github.com/shopspring/decimal"
)

// CostService books vehicle costs with their conversion snapshot: the rate
// to the tenant base currency at the cost date, captured once at booking
// time and treated as the historical record from then on.
type CostService struct {
	rateCache portssvc.RateCacheSvcFacade
}

// NewCostService creates a CostService over the given rate cache.
func NewCostService(rateCache portssvc.RateCacheSvcFacade) *CostService {
	return &CostService{rateCache: rateCache}
}

// CreateCost validates the request, resolves the conversion snapshot and
// persists the cost. Rate resolution order: same currency as the tenant
// base needs no conversion; an operator-supplied manual rate wins next;
// otherwise the rate cache resolves the rate for the cost date.
func (s *CostService) CreateCost(ctx context.Context, repos *portsrepo.TenantRepositories, req dto.CreateCostRequest, creatorUserID string) (*domain.VehicleCost, error) {
	costDate, err := time.Parse(time.DateOnly, req.CostDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid costDate %q", apperrors.ErrValidation, req.CostDate)
	}
	if req.ManualFxRate.IsNegative() {
		return nil, fmt.Errorf("%w: manual rate must be positive", apperrors.ErrInvalidRate)
	}

	amount, err := domain.NewMoney(req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}

	settings, err := repos.Settings.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant settings: %w", err)
	}
	baseCurrency := settings.BaseCurrency

	var rate decimal.Decimal
	switch {
	case amount.CurrencyCode() == baseCurrency:
		rate = decimal.NewFromInt(1)
	case !req.ManualFxRate.IsZero():
		rate = req.ManualFxRate
	default:
		rate, err = s.rateCache.GetOrFetch(ctx, repos.Rates, amount.CurrencyCode(), baseCurrency, costDate)
		if err != nil {
			return nil, err
		}
	}

	converted, err := amount.Convert(baseCurrency, rate)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	cost := domain.VehicleCost{
		VehicleID:                 req.VehicleID,
		CostType:                  req.CostType,
		CostDate:                  costDate,
		Amount:                    amount.Decimal(),
		Currency:                  amount.CurrencyCode(),
		FxRateToBase:              rate,
		AmountBase:                converted.Decimal(),
		BaseCurrencyAtTransaction: baseCurrency,
		ManualFxRate:              req.ManualFxRate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	costID, err := repos.Costs.SaveCost(ctx, cost)
	if err != nil {
		return nil, fmt.Errorf("failed to save cost: %w", err)
	}
	cost.CostID = costID
	cost.TenantID = repos.Guard.TenantID()
	return &cost, nil
}

// GetCost returns one cost of the tenant.
func (s *CostService) GetCost(ctx context.Context, repos *portsrepo.TenantRepositories, costID int64) (*domain.VehicleCost, error) {
	return repos.Costs.FindCostByID(ctx, costID)
}

// ListCosts returns the costs of one vehicle with their base-currency
// total, summed in minor units so ordering cannot change the result.
func (s *CostService) ListCosts(ctx context.Context, repos *portsrepo.TenantRepositories, vehicleID int64) (*dto.CostListResponse, error) {
	settings, err := repos.Settings.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant settings: %w", err)
	}

	costs, err := repos.Costs.ListCostsByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	amounts := make([]domain.Money, 0, len(costs))
	responses := make([]dto.CostResponse, 0, len(costs))
	for i := range costs {
		baseAmount, err := domain.NewMoney(costs[i].AmountBase, settings.BaseCurrency)
		if err != nil {
			return nil, err
		}
		amounts = append(amounts, baseAmount)
		responses = append(responses, dto.ToCostResponse(&costs[i]))
	}

	total, err := domain.SumMoney(settings.BaseCurrency, amounts)
	if err != nil {
		return nil, err
	}
	return &dto.CostListResponse{
		Costs:        responses,
		TotalBase:    total.Decimal(),
		BaseCurrency: settings.BaseCurrency,
	}, nil
}

// DeleteCost removes one cost of the tenant.
func (s *CostService) DeleteCost(ctx context.Context, repos *portsrepo.TenantRepositories, costID int64) error {
	return repos.Costs.DeleteCost(ctx, costID)
}

var _ portssvc.CostSvcFacade = (*CostService)(nil)
