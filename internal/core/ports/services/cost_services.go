package services

import (
	"context"

	"github.com/dealerledger/dealer_ledger_app/internal/core/domain"
	portsrepo "github.com/dealerledger/dealer_ledger_app/internal/core/ports/repositories"
	"github.com/dealerledger/dealer_ledger_app/internal/dto"
)

// CostReaderSvc defines read operations for vehicle costs.
type CostReaderSvc interface {
	GetCost(ctx context.Context, repos *portsrepo.TenantRepositories, costID int64) (*domain.VehicleCost, error)
	ListCosts(ctx context.Context, repos *portsrepo.TenantRepositories, vehicleID int64) (*dto.CostListResponse, error)
}

// CostWriterSvc defines write operations for vehicle costs.
type CostWriterSvc interface {
	// CreateCost books a cost, capturing the conversion snapshot (rate to
	// the tenant base currency at the cost date) inside one transaction.
	CreateCost(ctx context.Context, repos *portsrepo.TenantRepositories, req dto.CreateCostRequest, creatorUserID string) (*domain.VehicleCost, error)
	DeleteCost(ctx context.Context, repos *portsrepo.TenantRepositories, costID int64) error
}

// CostSvcFacade combines all cost-related service interfaces.
type CostSvcFacade interface {
	CostReaderSvc
	CostWriterSvc
}
