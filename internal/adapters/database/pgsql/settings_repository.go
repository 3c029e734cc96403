package pgsql

import (
	"context"

	"github.com/dealerledger/dealer_ledger_app/internal/core/domain"
	portsrepo "github.com/dealerledger/dealer_ledger_app/internal/core/ports/repositories"
)

// GuardSettingsRepository reads per-tenant settings through the guard; the
// tenant predicate selects exactly the caller's row.
type GuardSettingsRepository struct {
	guard portsrepo.TenantGuard
}

// NewSettingsRepository creates a GuardSettingsRepository over the given guard.
func NewSettingsRepository(guard portsrepo.TenantGuard) *GuardSettingsRepository {
	return &GuardSettingsRepository{guard: guard}
}

// GetSettings returns the settings row of the guard's tenant.
func (r *GuardSettingsRepository) GetSettings(ctx context.Context) (*domain.TenantSettings, error) {
	row, err := r.guard.SelectOne(ctx, "tenant_settings", nil, nil)
	if err != nil {
		return nil, err
	}
	baseCurrency, err := rowString(row, "base_currency")
	if err != nil {
		return nil, err
	}
	settings := &domain.TenantSettings{
		TenantID:     r.guard.TenantID(),
		BaseCurrency: baseCurrency,
	}
	if createdAt, err := rowTime(row, "created_at"); err == nil {
		settings.CreatedAt = createdAt
	}
	if updatedAt, err := rowTime(row, "last_updated_at"); err == nil {
		settings.LastUpdatedAt = updatedAt
	}
	return settings, nil
}

var _ portsrepo.TenantSettingsReader = (*GuardSettingsRepository)(nil)
