package handlers

import (
	"net/http"

	portsrepo "github.com/dealerledger/dealer_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/dealerledger/dealer_ledger_app/internal/core/ports/services"
	"github.com/dealerledger/dealer_ledger_app/internal/middleware"
	"github.com/dealerledger/dealer_ledger_app/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	factory portsrepo.GuardFactory,
) {
	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	r.GET("/", getHome)

	// Setup API v1 routes with tenant auth middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, services, factory)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	factory portsrepo.GuardFactory,
) {
	// Every v1 route runs tenant-bound: the middleware verifies the token
	// and the guard factory scopes all data access to the claimed tenant.
	v1 := r.Group("/api/v1", middleware.TenantAuthMiddleware(cfg.JWTSecret))

	RegisterCostRoutes(v1, services.Cost, factory)
	RegisterFxRoutes(v1, services.RateCache, services.FxResync, factory)
}

// tenantRepos resolves the guard-bound repository set for the request's
// tenant. Writes the error response itself and returns false when the
// request carries no usable tenant binding.
func tenantRepos(c *gin.Context, factory portsrepo.GuardFactory) (*portsrepo.TenantRepositories, bool) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tenant, ok := middleware.GetTenantFromCtx(c.Request.Context())
	if !ok {
		logger.Error("Tenant binding missing from authenticated request")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}

	repos, err := factory.ForTenant(tenant)
	if err != nil {
		logger.Error("Failed to build tenant repositories", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil, false
	}
	return repos, true
}
