package repositories

import (
	"github.com/dealerledger/dealer_ledger_app/internal/core/domain"
)

// TenantRepositories bundles the guard-bound repositories for one request.
// Everything inside shares the same TenantGuard and therefore the same
// tenant scope; the exchange-rate store rides the same transport even though
// rates themselves are global.
type TenantRepositories struct {
	Guard    TenantGuard
	Costs    CostRepositoryFacade
	Settings TenantSettingsReader
	Rates    ExchangeRateRepositoryFacade
}

// GuardFactory constructs the guard-bound repository set for a tenant.
// It replaces any notion of a package-level connection pool: the factory
// owns an explicit pool handle, so tests can run several isolated ones.
type GuardFactory interface {
	ForTenant(tenant domain.TenantContext) (*TenantRepositories, error)
}
