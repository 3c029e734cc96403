package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dealerledger/dealer_ledger_app/internal/apperrors"
	"github.com/dealerledger/dealer_ledger_app/internal/core/domain"
	portsrepo "github.com/dealerledger/dealer_ledger_app/internal/core/ports/repositories"
	"github.com/dealerledger/dealer_ledger_app/internal/core/services"
	"github.com/dealerledger/dealer_ledger_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock RateCache ---
type MockRateCache struct {
	mock.Mock
}

func (m *MockRateCache) GetOrFetch(ctx context.Context, store portsrepo.ExchangeRateRepositoryFacade, base, quote string, day time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, store, base, quote, day)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// --- Mock CostRepository ---
type MockCostRepository struct {
	mock.Mock
}

func (m *MockCostRepository) FindCostByID(ctx context.Context, costID int64) (*domain.VehicleCost, error) {
	args := m.Called(ctx, costID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VehicleCost), args.Error(1)
}

func (m *MockCostRepository) ListCostsByVehicle(ctx context.Context, vehicleID int64) ([]domain.VehicleCost, error) {
	args := m.Called(ctx, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VehicleCost), args.Error(1)
}

func (m *MockCostRepository) ListResyncCandidates(ctx context.Context, vehicleID int64, from, to time.Time) ([]domain.VehicleCost, error) {
	args := m.Called(ctx, vehicleID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VehicleCost), args.Error(1)
}

func (m *MockCostRepository) SaveCost(ctx context.Context, cost domain.VehicleCost) (int64, error) {
	args := m.Called(ctx, cost)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCostRepository) UpdateCostFxSnapshot(ctx context.Context, costID int64, fxRateToBase, amountBase decimal.Decimal, baseCurrency string) error {
	args := m.Called(ctx, costID, fxRateToBase, amountBase, baseCurrency)
	return args.Error(0)
}

func (m *MockCostRepository) DeleteCost(ctx context.Context, costID int64) error {
	args := m.Called(ctx, costID)
	return args.Error(0)
}

// --- Mock TenantSettingsReader ---
type MockSettingsReader struct {
	mock.Mock
}

func (m *MockSettingsReader) GetSettings(ctx context.Context) (*domain.TenantSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TenantSettings), args.Error(1)
}

// stubGuard satisfies the guard interface where services only need the
// bound tenant identifier.
type stubGuard struct {
	portsrepo.TenantGuard
	tenantID int64
}

func (g stubGuard) TenantID() int64 { return g.tenantID }

func newTenantRepos(tenantID int64, costs *MockCostRepository, settings *MockSettingsReader, rates *MockRateStore) *portsrepo.TenantRepositories {
	return &portsrepo.TenantRepositories{
		Guard:    stubGuard{tenantID: tenantID},
		Costs:    costs,
		Settings: settings,
		Rates:    rates,
	}
}

// --- Test Suite ---
type FxResyncServiceTestSuite struct {
	suite.Suite
	mockRateCache *MockRateCache
	mockCosts     *MockCostRepository
	mockSettings  *MockSettingsReader
	repos         *portsrepo.TenantRepositories
	service       *services.FxResyncService
}

func (suite *FxResyncServiceTestSuite) SetupTest() {
	suite.mockRateCache = new(MockRateCache)
	suite.mockCosts = new(MockCostRepository)
	suite.mockSettings = new(MockSettingsReader)
	suite.repos = newTenantRepos(7, suite.mockCosts, suite.mockSettings, new(MockRateStore))
	suite.service = services.NewFxResyncService(suite.mockRateCache)
}

func (suite *FxResyncServiceTestSuite) settings(base string) {
	suite.mockSettings.On("GetSettings", mock.Anything).Return(&domain.TenantSettings{
		TenantID:     7,
		BaseCurrency: base,
	}, nil).Once()
}

func candidate(id int64, day time.Time, amount, currency string) domain.VehicleCost {
	return domain.VehicleCost{
		CostID:    id,
		TenantID:  7,
		VehicleID: 42,
		CostType:  "repair",
		CostDate:  day,
		Amount:    decimal.RequireFromString(amount),
		Currency:  currency,
	}
}

func (suite *FxResyncServiceTestSuite) TestResync_InvalidDates_Rejected() {
	ctx := context.Background()

	_, err := suite.service.ResyncVehicleCosts(ctx, suite.repos, dto.FxResyncRequest{
		VehicleID: 42, FromDate: "not-a-date", ToDate: "2023-07-01",
	})
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.service.ResyncVehicleCosts(ctx, suite.repos, dto.FxResyncRequest{
		VehicleID: 42, FromDate: "2023-07-01", ToDate: "2023-06-01",
	})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *FxResyncServiceTestSuite) TestResync_RewritesSnapshots() {
	ctx := context.Background()
	from := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)
	dayA := time.Date(2023, 6, 10, 0, 0, 0, 0, time.UTC)
	dayB := time.Date(2023, 6, 20, 0, 0, 0, 0, time.UTC)

	suite.settings("TRY")
	suite.mockCosts.On("ListResyncCandidates", ctx, int64(42), from, to).Return([]domain.VehicleCost{
		candidate(1, dayA, "100.00", "USD"),
		candidate(2, dayB, "250.00", "EUR"),
		candidate(3, dayB, "900.00", "TRY"), // already in base currency
	}, nil).Once()

	rateA := decimal.RequireFromString("34.50")
	rateB := decimal.RequireFromString("37.20")
	suite.mockRateCache.On("GetOrFetch", ctx, suite.repos.Rates, "USD", "TRY", dayA).Return(rateA, nil).Once()
	suite.mockRateCache.On("GetOrFetch", ctx, suite.repos.Rates, "EUR", "TRY", dayB).Return(rateB, nil).Once()

	suite.mockCosts.On("UpdateCostFxSnapshot", ctx, int64(1), rateA,
		mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.RequireFromString("3450.00")) }),
		"TRY").Return(nil).Once()
	suite.mockCosts.On("UpdateCostFxSnapshot", ctx, int64(2), rateB,
		mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.RequireFromString("9300.00")) }),
		"TRY").Return(nil).Once()

	result, err := suite.service.ResyncVehicleCosts(ctx, suite.repos, dto.FxResyncRequest{
		VehicleID: 42, FromDate: "2023-06-01", ToDate: "2023-06-30",
	})

	suite.Require().NoError(err)
	suite.Equal(2, result.Updated)
	suite.Equal(1, result.Skipped)
	suite.Empty(result.Errors)
	suite.mockCosts.AssertExpectations(suite.T())
}

func (suite *FxResyncServiceTestSuite) TestResync_FailingRowDoesNotAbortSiblings() {
	ctx := context.Background()
	from := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)
	dayA := time.Date(2023, 6, 5, 0, 0, 0, 0, time.UTC)
	dayB := time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)
	dayC := time.Date(2023, 6, 25, 0, 0, 0, 0, time.UTC)

	suite.settings("TRY")
	suite.mockCosts.On("ListResyncCandidates", ctx, int64(42), from, to).Return([]domain.VehicleCost{
		candidate(1, dayA, "100.00", "USD"),
		candidate(2, dayB, "50.00", "GBP"),
		candidate(3, dayC, "75.00", "USD"),
	}, nil).Once()

	rate := decimal.RequireFromString("34.50")
	suite.mockRateCache.On("GetOrFetch", ctx, suite.repos.Rates, "USD", "TRY", dayA).Return(rate, nil).Once()
	suite.mockRateCache.On("GetOrFetch", ctx, suite.repos.Rates, "GBP", "TRY", dayB).
		Return(decimal.Zero, fmt.Errorf("%w: upstream 502", apperrors.ErrRateProvider)).Once()
	suite.mockRateCache.On("GetOrFetch", ctx, suite.repos.Rates, "USD", "TRY", dayC).Return(rate, nil).Once()

	suite.mockCosts.On("UpdateCostFxSnapshot", ctx, int64(1), rate, mock.Anything, "TRY").Return(nil).Once()
	suite.mockCosts.On("UpdateCostFxSnapshot", ctx, int64(3), rate, mock.Anything, "TRY").Return(nil).Once()

	result, err := suite.service.ResyncVehicleCosts(ctx, suite.repos, dto.FxResyncRequest{
		VehicleID: 42, FromDate: "2023-06-01", ToDate: "2023-06-30",
	})

	suite.Require().NoError(err)
	suite.Equal(2, result.Updated)
	suite.Equal(0, result.Skipped)
	suite.Require().Len(result.Errors, 1)
	suite.Contains(result.Errors[0], "cost 2")
	suite.Contains(result.Errors[0], "2023-06-15")
	suite.mockCosts.AssertExpectations(suite.T())
}

func (suite *FxResyncServiceTestSuite) TestResync_PersistFailureRecordedPerRow() {
	ctx := context.Background()
	from := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)
	day := time.Date(2023, 6, 10, 0, 0, 0, 0, time.UTC)

	suite.settings("TRY")
	suite.mockCosts.On("ListResyncCandidates", ctx, int64(42), from, to).Return([]domain.VehicleCost{
		candidate(9, day, "10.00", "USD"),
	}, nil).Once()
	suite.mockRateCache.On("GetOrFetch", ctx, suite.repos.Rates, "USD", "TRY", day).
		Return(decimal.RequireFromString("34.50"), nil).Once()
	suite.mockCosts.On("UpdateCostFxSnapshot", ctx, int64(9), mock.Anything, mock.Anything, "TRY").
		Return(apperrors.ErrNotFound).Once()

	result, err := suite.service.ResyncVehicleCosts(ctx, suite.repos, dto.FxResyncRequest{
		VehicleID: 42, FromDate: "2023-06-01", ToDate: "2023-06-30",
	})

	suite.Require().NoError(err)
	suite.Equal(0, result.Updated)
	suite.Require().Len(result.Errors, 1)
	suite.Contains(result.Errors[0], "cost 9")
}

func (suite *FxResyncServiceTestSuite) TestResync_NoCandidates_EmptyResult() {
	ctx := context.Background()
	from := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)

	suite.settings("TRY")
	suite.mockCosts.On("ListResyncCandidates", ctx, int64(42), from, to).
		Return([]domain.VehicleCost{}, nil).Once()

	result, err := suite.service.ResyncVehicleCosts(ctx, suite.repos, dto.FxResyncRequest{
		VehicleID: 42, FromDate: "2023-06-01", ToDate: "2023-06-30",
	})

	suite.Require().NoError(err)
	suite.Equal(0, result.Updated)
	suite.Equal(0, result.Skipped)
	suite.Empty(result.Errors)
	suite.mockRateCache.AssertNotCalled(suite.T(), "GetOrFetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFxResyncServiceTestSuite(t *testing.T) {
	suite.Run(t, new(FxResyncServiceTestSuite))
}
