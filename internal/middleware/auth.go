package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mayurgeek/devota-backend/internal/auth"
	"github.com/mayurgeek/devota-backend/internal/models"
	"github.com/mayurgeek/devota-backend/internal/service"
)

// TokenAuthenticator turns an Authorization header value into an identity.
type TokenAuthenticator interface {
	AuthenticateToken(header string) (*models.Identity, error)
}

// AuthMiddleware verifies the bearer token and attaches the identity to the request
// context. The token is trusted as-is until it expires.
func AuthMiddleware(authenticator TokenAuthenticator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := authenticator.AuthenticateToken(c.GetHeader("Authorization"))
		if err != nil {
			switch {
			case errors.Is(err, service.ErrMissingCredential):
				reject(c, http.StatusUnauthorized, "No token provided")
			case errors.Is(err, service.ErrInvalidToken):
				logger.Debug("Rejected bearer token", zap.String("path", c.FullPath()), zap.String("client_ip", c.ClientIP()))
				reject(c, http.StatusUnauthorized, "Invalid or expired token")
			default:
				logger.Error("Failed to authenticate token", zap.Error(err))
				reject(c, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := auth.IdentityFrom(c.Request.Context())

		switch err := auth.RequireRole(identity, models.RoleAdmin); {
		case err == nil:
			c.Next()
		case errors.Is(err, auth.ErrForbidden):
			logger.Info("Admin route denied", zap.Int64("user_id", identity.ID), zap.String("path", c.FullPath()))
			reject(c, http.StatusForbidden, "Access denied. Admin role required.")
		default:
			reject(c, http.StatusUnauthorized, "Not authenticated")
		}
	}
}

func reject(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}
