package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dealerledger/dealer_ledger_app/internal/core/domain"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// tenantClaims are the JWT claims this API requires: the registered set
// plus the tenant the token is scoped to.
type tenantClaims struct {
	jwt.RegisteredClaims
	TenantID int64 `json:"tid"`
}

// TenantAuthMiddleware creates a Gin middleware handler that validates JWT
// tokens and binds the request to the tenant claimed in the token. Every
// route behind it carries a verified tenant; the data layer rejects
// anything else.
func TenantAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logger.Warn("Authorization header format invalid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		token, err := jwt.ParseWithClaims(parts[1], &tenantClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			logger.Warn("Invalid token", "error", err)
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token has expired"
			} else if errors.Is(err, jwt.ErrTokenNotValidYet) {
				msg = "Token not valid yet"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		claims, ok := token.Claims.(*tenantClaims)
		if !ok || !token.Valid {
			logger.Warn("Invalid token claims")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		tenant, err := domain.NewTenantContext(claims.TenantID)
		if err != nil {
			logger.Error("Tenant claim missing or invalid in valid token", slog.Int64("tid", claims.TenantID))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid tenant claim"})
			return
		}

		userID := claims.Subject
		if userID == "" {
			logger.Error("User ID (subject) missing from valid token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		// Store tenant and user in the request context and enrich the
		// request logger with both.
		ctx := context.WithValue(c.Request.Context(), tenantCtxKey, tenant)
		ctx = context.WithValue(ctx, userIDKey, userID)
		enrichedLogger := GetLoggerFromCtx(ctx).With(
			slog.Int64("tenant_id", tenant.TenantID()),
			slog.String("user_id", userID),
		)
		ctx = context.WithValue(ctx, loggerCtxKey, enrichedLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
