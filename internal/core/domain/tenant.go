package domain

import (
	"fmt"

	"github.com/dealerledger/dealer_ledger_app/internal/apperrors"
)

// TenantContext is an opaque capability binding one request to one tenant.
// It is constructed once per inbound request, never mutated, and dropped at
// request end. Every data access path requires one; there is no "no tenant"
// default.
type TenantContext struct {
	tenantID int64
}

// NewTenantContext builds a TenantContext for the given tenant identifier.
// It fails with apperrors.ErrInvalidTenant when the identifier is missing or
// non-positive.
func NewTenantContext(tenantID int64) (TenantContext, error) {
	if tenantID <= 0 {
		return TenantContext{}, fmt.Errorf("%w: tenant id %d", apperrors.ErrInvalidTenant, tenantID)
	}
	return TenantContext{tenantID: tenantID}, nil
}

// TenantID returns the bound tenant identifier.
func (t TenantContext) TenantID() int64 {
	return t.tenantID
}

// Tenant represents a customer organization. Rows in tenant-owned tables
// reference exactly one tenant and must never be visible to another.
type Tenant struct {
	TenantID int64  `json:"tenantId"`
	Name     string `json:"name"`
	AuditFields
}

// TenantSettings holds per-tenant configuration needed by the financial
// write paths, most importantly the base currency all aggregates are
// reported in.
type TenantSettings struct {
	TenantID     int64  `json:"tenantId"`
	BaseCurrency string `json:"baseCurrency"` // ISO 4217 code, e.g. "TRY"
	AuditFields
}
