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

// FxResyncService re-derives stored conversion snapshots for historical
// cost rows. Only rows without a manual rate override are touched; the
// manual override is an operator decision this batch must never undo.
type FxResyncService struct {
	rateCache portssvc.RateCacheSvcFacade
}

// NewFxResyncService creates a FxResyncService over the given rate cache.
func NewFxResyncService(rateCache portssvc.RateCacheSvcFacade) *FxResyncService {
	return &FxResyncService{rateCache: rateCache}
}

// ResyncVehicleCosts walks the candidates of one vehicle inside the date
// range and rewrites their fx snapshot from the rate cache. A failing row
// is recorded in the result's error list and never aborts its siblings: a
// stuck row must not block correction of the others.
func (s *FxResyncService) ResyncVehicleCosts(ctx context.Context, repos *portsrepo.TenantRepositories, req dto.FxResyncRequest) (*dto.FxResyncResult, error) {
	from, err := time.Parse(time.DateOnly, req.FromDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid fromDate %q", apperrors.ErrValidation, req.FromDate)
	}
	to, err := time.Parse(time.DateOnly, req.ToDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid toDate %q", apperrors.ErrValidation, req.ToDate)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: toDate precedes fromDate", apperrors.ErrValidation)
	}

	settings, err := repos.Settings.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant settings: %w", err)
	}

	candidates, err := repos.Costs.ListResyncCandidates(ctx, req.VehicleID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list resync candidates: %w", err)
	}

	result := &dto.FxResyncResult{Errors: []string{}}
	for _, cost := range candidates {
		if cost.Currency == settings.BaseCurrency {
			result.Skipped++
			continue
		}

		rate, err := s.rateCache.GetOrFetch(ctx, repos.Rates, cost.Currency, settings.BaseCurrency, cost.CostDate)
		if err != nil {
			result.Errors = append(result.Errors, resyncRowError(cost, err))
			continue
		}
		if rate.LessThanOrEqual(decimal.Zero) {
			result.Errors = append(result.Errors, resyncRowError(cost, fmt.Errorf("%w: %s", apperrors.ErrInvalidRate, rate.String())))
			continue
		}

		amount, err := domain.NewMoney(cost.Amount, cost.Currency)
		if err != nil {
			result.Errors = append(result.Errors, resyncRowError(cost, err))
			continue
		}
		converted, err := amount.Convert(settings.BaseCurrency, rate)
		if err != nil {
			result.Errors = append(result.Errors, resyncRowError(cost, err))
			continue
		}

		if err := repos.Costs.UpdateCostFxSnapshot(ctx, cost.CostID, rate, converted.Decimal(), settings.BaseCurrency); err != nil {
			result.Errors = append(result.Errors, resyncRowError(cost, err))
			continue
		}
		result.Updated++
	}
	return result, nil
}

func resyncRowError(cost domain.VehicleCost, err error) string {
	return fmt.Sprintf("cost %d (%s): %v", cost.CostID, cost.CostDate.Format(time.DateOnly), err)
}

var _ portssvc.FxResyncSvcFacade = (*FxResyncService)(nil)
