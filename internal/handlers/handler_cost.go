package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dealerledger/dealer_ledger_app/internal/apperrors"
	portsrepo "github.com/dealerledger/dealer_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/dealerledger/dealer_ledger_app/internal/core/ports/services"
	"github.com/dealerledger/dealer_ledger_app/internal/dto"
	"github.com/dealerledger/dealer_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// costHandler handles HTTP requests related to vehicle costs.
type costHandler struct {
	costService portssvc.CostSvcFacade
	factory     portsrepo.GuardFactory
}

func newCostHandler(cs portssvc.CostSvcFacade, factory portsrepo.GuardFactory) *costHandler {
	return &costHandler{
		costService: cs,
		factory:     factory,
	}
}

// RegisterCostRoutes registers routes related to vehicle costs.
func RegisterCostRoutes(rg *gin.RouterGroup, cs portssvc.CostSvcFacade, factory portsrepo.GuardFactory) {
	h := newCostHandler(cs, factory)

	vehicles := rg.Group("/vehicles/:vehicle_id")
	{
		vehicles.POST("/costs", h.createCost)
		vehicles.GET("/costs", h.listCosts)
	}

	costs := rg.Group("/costs")
	{
		costs.GET("/:cost_id", h.getCost)
		costs.DELETE("/:cost_id", h.deleteCost)
	}
}

func (h *costHandler) createCost(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	vehicleID, err := strconv.ParseInt(c.Param("vehicle_id"), 10, 64)
	if err != nil || vehicleID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID"})
		return
	}

	var req dto.CreateCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateCost", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	req.VehicleID = vehicleID

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	repos, ok := tenantRepos(c, h.factory)
	if !ok {
		return
	}

	cost, err := h.costService.CreateCost(c.Request.Context(), repos, req, creatorUserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Vehicle not found for cost creation", slog.Int64("vehicle_id", vehicleID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrInvalidRate):
			logger.Warn("Validation error creating cost", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrRateProvider):
			logger.Error("Rate provider unavailable during cost creation", slog.String("error", err.Error()))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Exchange rate provider unavailable"})
		default:
			logger.Error("Failed to create cost", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create cost"})
		}
		return
	}

	logger.Info("Cost created", slog.Int64("cost_id", cost.CostID), slog.Int64("vehicle_id", vehicleID))
	c.JSON(http.StatusCreated, dto.ToCostResponse(cost))
}

func (h *costHandler) listCosts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	vehicleID, err := strconv.ParseInt(c.Param("vehicle_id"), 10, 64)
	if err != nil || vehicleID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID"})
		return
	}

	repos, ok := tenantRepos(c, h.factory)
	if !ok {
		return
	}

	result, err := h.costService.ListCosts(c.Request.Context(), repos, vehicleID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
			return
		}
		logger.Error("Failed to list costs", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list costs"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *costHandler) getCost(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	costID, err := strconv.ParseInt(c.Param("cost_id"), 10, 64)
	if err != nil || costID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cost ID"})
		return
	}

	repos, ok := tenantRepos(c, h.factory)
	if !ok {
		return
	}

	cost, err := h.costService.GetCost(c.Request.Context(), repos, costID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cost not found"})
			return
		}
		logger.Error("Failed to get cost", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve cost"})
		return
	}

	c.JSON(http.StatusOK, dto.ToCostResponse(cost))
}

func (h *costHandler) deleteCost(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	costID, err := strconv.ParseInt(c.Param("cost_id"), 10, 64)
	if err != nil || costID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cost ID"})
		return
	}

	repos, ok := tenantRepos(c, h.factory)
	if !ok {
		return
	}

	if err := h.costService.DeleteCost(c.Request.Context(), repos, costID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cost not found"})
			return
		}
		logger.Error("Failed to delete cost", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete cost"})
		return
	}

	c.Status(http.StatusNoContent)
}
