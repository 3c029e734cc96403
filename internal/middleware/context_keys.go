package middleware

import (
	"context"

	"github.com/dealerledger/dealer_ledger_app/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// userIDKey is the key used to store the authenticated user's ID in the
// request context.
const userIDKey = contextKey("userID")

// tenantCtxKey is the key used to store the authenticated tenant binding
// in the request context.
const tenantCtxKey = contextKey("tenant")

// GetUserIDFromContext retrieves the authenticated user ID from the Gin
// context. It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, ok := c.Request.Context().Value(userIDKey).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// GetTenantFromCtx retrieves the tenant binding from a standard context.
// Handlers must treat a missing binding as an authentication failure; a
// request without a tenant never reaches the data layer.
func GetTenantFromCtx(ctx context.Context) (domain.TenantContext, bool) {
	tenant, ok := ctx.Value(tenantCtxKey).(domain.TenantContext)
	return tenant, ok
}
