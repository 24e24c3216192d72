package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mayurgeek/devota-backend/internal/auth"
	"github.com/mayurgeek/devota-backend/internal/service"
)

const msgInternal = "Internal server error"

// messages overrides the default text for specific errors.
type messages map[error]string

var defaultErrors = []struct {
	err     error
	status  int
	message string
}{
	{service.ErrValidation, http.StatusBadRequest, "Invalid request"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
	{service.ErrMissingCredential, http.StatusUnauthorized, "No token provided"},
	{service.ErrInvalidToken, http.StatusUnauthorized, "Invalid or expired token"},
	{auth.ErrUnauthenticated, http.StatusUnauthorized, "Not authenticated"},
	{auth.ErrForbidden, http.StatusForbidden, "Access denied. Admin role required."},
	{service.ErrNotFound, http.StatusNotFound, "Not found"},
	{service.ErrConflict, http.StatusConflict, "Already exists"},
}

// AbortWithError writes the JSON error envelope for err and stops the handler chain.
// Unexpected errors are logged and reported as a generic 500.
func AbortWithError(c *gin.Context, logger *zap.Logger, err error, overrides messages) {
	for _, e := range defaultErrors {
		if !errors.Is(err, e.err) {
			continue
		}
		msg, ok := overrides[e.err]
		if !ok {
			msg = e.message
		}
		c.AbortWithStatusJSON(e.status, gin.H{"success": false, "message": msg})
		return
	}

	logger.Error("Request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": msgInternal})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": message})
}
