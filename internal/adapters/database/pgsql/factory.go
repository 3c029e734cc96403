package pgsql

import (
	"github.com/dealerledger/dealer_ledger_app/internal/core/domain"
	portsrepo "github.com/dealerledger/dealer_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/dealerledger/dealer_ledger_app/internal/core/ports/services"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GuardRepositoryFactory builds the per-request, guard-bound repository set.
// The pool handle is injected, never a package singleton, so tests can run
// several isolated pools side by side.
type GuardRepositoryFactory struct {
	pool    *pgxpool.Pool
	auditor portssvc.SecurityAuditor
}

// NewGuardRepositoryFactory creates a factory over an explicit pool handle.
func NewGuardRepositoryFactory(pool *pgxpool.Pool, auditor portssvc.SecurityAuditor) *GuardRepositoryFactory {
	return &GuardRepositoryFactory{pool: pool, auditor: auditor}
}

// ForTenant binds a fresh guard to the tenant and wires the repositories
// that share it. Fails with apperrors.ErrInvalidTenant for an unbound
// tenant context.
func (f *GuardRepositoryFactory) ForTenant(tenant domain.TenantContext) (*portsrepo.TenantRepositories, error) {
	guard, err := NewTenantGuard(f.pool, tenant, f.auditor)
	if err != nil {
		return nil, err
	}
	return &portsrepo.TenantRepositories{
		Guard:    guard,
		Costs:    NewCostRepository(guard),
		Settings: NewSettingsRepository(guard),
		Rates:    NewExchangeRateRepository(guard),
	}, nil
}

var _ portsrepo.GuardFactory = (*GuardRepositoryFactory)(nil)
