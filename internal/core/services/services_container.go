package services

import (
	"log/slog"

	portssvc "github.com/dealerledger/dealer_ledger_app/internal/core/ports/services"
)

// NewServiceContainer wires the application services together. The rate
// cache is shared by both consumers (cost creation and FX resync) so a
// rate fetched for one is visible to the other within the same process.
// The auditor is passed in because the repository layer holds a reference
// to the same instance.
func NewServiceContainer(provider portssvc.RateProvider, auditor portssvc.SecurityAuditor, logger *slog.Logger) *portssvc.ServiceContainer {
	rateCache := NewRateCacheService(provider, logger)

	return &portssvc.ServiceContainer{
		RateCache: rateCache,
		FxResync:  NewFxResyncService(rateCache),
		Cost:      NewCostService(rateCache),
		Audit:     auditor,
	}
}
