package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mayurgeek/devota-backend/internal/auth"
	"github.com/mayurgeek/devota-backend/internal/service"
)

type AuthHandler interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Profile(c *gin.Context)
}

type authHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService service.AuthService, logger *zap.Logger) AuthHandler {
	return &authHandler{authService: authService, logger: logger}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

const msgCredentialsRequired = "Email and password are required"

func (h *authHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Failed to bind JSON for registration", zap.Error(err))
		badRequest(c, msgCredentialsRequired)
		return
	}

	session, err := h.authService.Register(c.Request.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		validation := "Role must be either admin or user"
		if errors.Is(err, service.ErrPasswordTooLong) {
			validation = "Password must be at most 72 bytes"
		}
		AbortWithError(c, h.logger, err, messages{
			service.ErrValidation: validation,
			service.ErrConflict:   "Email already in use",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
		"user":       session.User,
	})
}

func (h *authHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Failed to bind JSON for login", zap.Error(err))
		badRequest(c, msgCredentialsRequired)
		return
	}

	session, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		AbortWithError(c, h.logger, err, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
		"user":       session.User,
	})
}

func (h *authHandler) Profile(c *gin.Context) {
	identity := auth.IdentityFrom(c.Request.Context())

	user, err := h.authService.Profile(c.Request.Context(), identity)
	if err != nil {
		AbortWithError(c, h.logger, err, messages{service.ErrNotFound: "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}
