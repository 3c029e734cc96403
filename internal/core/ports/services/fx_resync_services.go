package services

import (
	"context"

	portsrepo "github.com/dealerledger/dealer_ledger_app/internal/core/ports/repositories"
	"github.com/dealerledger/dealer_ledger_app/internal/dto"
)

// FxResyncSvcFacade re-derives stored conversion snapshots for historical
// cost rows from the rate cache.
type FxResyncSvcFacade interface {
	// ResyncVehicleCosts walks the resync candidates of one vehicle inside
	// the date range and rewrites their fx snapshot from the rate cache.
	// Rows already in the tenant base currency are counted as skipped.
	// Per-row failures are collected into the result's error list and do
	// not abort the batch.
	ResyncVehicleCosts(ctx context.Context, repos *portsrepo.TenantRepositories, req dto.FxResyncRequest) (*dto.FxResyncResult, error)
}
