package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dealerledger/dealer_ledger_app/internal/apperrors"
	"github.com/dealerledger/dealer_ledger_app/internal/core/domain"
	portsrepo "github.com/dealerledger/dealer_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/dealerledger/dealer_ledger_app/internal/core/ports/services"
	"github.com/dealerledger/dealer_ledger_app/internal/dto"
	"github.com/dealerledger/dealer_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// fxHandler handles HTTP requests related to exchange rates.
type fxHandler struct {
	rateCache portssvc.RateCacheSvcFacade
	fxResync  portssvc.FxResyncSvcFacade
	factory   portsrepo.GuardFactory
}

func newFxHandler(rc portssvc.RateCacheSvcFacade, fr portssvc.FxResyncSvcFacade, factory portsrepo.GuardFactory) *fxHandler {
	return &fxHandler{
		rateCache: rc,
		fxResync:  fr,
		factory:   factory,
	}
}

// RegisterFxRoutes registers routes related to exchange rates.
func RegisterFxRoutes(rg *gin.RouterGroup, rc portssvc.RateCacheSvcFacade, fr portssvc.FxResyncSvcFacade, factory portsrepo.GuardFactory) {
	h := newFxHandler(rc, fr, factory)

	fx := rg.Group("/fx")
	{
		fx.GET("/rates", h.getRate)
		fx.GET("/convert", h.convert)
		fx.POST("/resync", h.resync)
	}
}

// rateDate parses the optional date query parameter, defaulting to the
// current day.
func rateDate(c *gin.Context) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return domain.RateDay(time.Now().UTC()), nil
	}
	day, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, err
	}
	return day, nil
}

func (h *fxHandler) getRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	base := strings.ToUpper(c.Query("base"))
	quote := strings.ToUpper(c.Query("quote"))
	if len(base) != 3 || len(quote) != 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "base and quote must be 3-letter currency codes"})
		return
	}
	day, err := rateDate(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted YYYY-MM-DD"})
		return
	}

	repos, ok := tenantRepos(c, h.factory)
	if !ok {
		return
	}

	if _, err := h.rateCache.GetOrFetch(c.Request.Context(), repos.Rates, base, quote, day); err != nil {
		h.writeRateError(c, logger, err)
		return
	}

	// Read the stored row back so the response carries the source label.
	record, err := repos.Rates.FindRate(c.Request.Context(), base, quote, domain.RateDay(day))
	if err != nil {
		logger.Error("Failed to read back resolved rate", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve rate"})
		return
	}

	c.JSON(http.StatusOK, dto.ToExchangeRateResponse(record))
}

func (h *fxHandler) convert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ConvertRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		logger.Warn("Failed to bind query for Convert", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	day := domain.RateDay(time.Now().UTC())
	if req.Date != "" {
		parsed, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	amount, err := domain.NewMoney(req.Amount, req.FromCurrency)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	toCurrency := strings.ToUpper(req.ToCurrency)
	rate := decimal.NewFromInt(1)
	if amount.CurrencyCode() != toCurrency {
		repos, ok := tenantRepos(c, h.factory)
		if !ok {
			return
		}
		rate, err = h.rateCache.GetOrFetch(c.Request.Context(), repos.Rates, req.FromCurrency, req.ToCurrency, day)
		if err != nil {
			h.writeRateError(c, logger, err)
			return
		}
	}

	converted, err := amount.Convert(toCurrency, rate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.ConvertResponse{
		Amount:       amount.Decimal(),
		FromCurrency: amount.CurrencyCode(),
		ToCurrency:   converted.CurrencyCode(),
		Rate:         rate,
		Converted:    converted.Decimal(),
		RateDate:     domain.RateDay(day).Format(time.DateOnly),
	})
}

func (h *fxHandler) resync(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.FxResyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for FxResync", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	repos, ok := tenantRepos(c, h.factory)
	if !ok {
		return
	}

	result, err := h.fxResync.ResyncVehicleCosts(c.Request.Context(), repos, req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to run fx resync", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resync costs"})
		return
	}

	logger.Info("Fx resync completed",
		slog.Int64("vehicle_id", req.VehicleID),
		slog.Int("updated", result.Updated),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", len(result.Errors)),
	)
	c.JSON(http.StatusOK, result)
}

func (h *fxHandler) writeRateError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrInvalidRate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrRateProvider):
		logger.Error("Rate provider unavailable", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Exchange rate provider unavailable"})
	default:
		logger.Error("Failed to resolve rate", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve rate"})
	}
}
