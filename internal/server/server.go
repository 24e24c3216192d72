package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mayurgeek/devota-backend/internal/handler"
	"github.com/mayurgeek/devota-backend/internal/metrics"
	"github.com/mayurgeek/devota-backend/internal/middleware"
	"github.com/mayurgeek/devota-backend/internal/service"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	router         *gin.Engine
	authService    service.AuthService
	projectService service.ProjectService
	metrics        *metrics.Metrics
	logger         *zap.Logger
}

// NewServer wires the routes. m may be nil, in which case /metrics is not served.
func NewServer(authService service.AuthService, projectService service.ProjectService, m *metrics.Metrics, logger *zap.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger), middleware.CORS(), m.Middleware())

	s := &Server{
		router:         router,
		authService:    authService,
		projectService: projectService,
		metrics:        m,
		logger:         logger,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	authHandler := handler.NewAuthHandler(s.authService, s.logger)
	projectHandler := handler.NewProjectHandler(s.projectService, s.logger)

	authenticate := middleware.AuthMiddleware(s.authService, s.logger)
	requireAdmin := middleware.RequireAdmin(s.logger)

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.metrics != nil {
		s.router.GET("/metrics", s.metrics.Handler())
	}

	// Authentication routes
	authGroup := s.router.Group("/api/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/profile", authenticate, authHandler.Profile)

	api := s.router.Group("/api")
	api.GET("/check-access", projectHandler.CheckAccess)

	// Administrative routes
	admin := api.Group("")
	admin.Use(authenticate, requireAdmin)
	{
		admin.GET("/projects", projectHandler.ListProjects)
		admin.POST("/create-project", projectHandler.CreateProject)
		admin.POST("/block-project", projectHandler.BlockProject)
		admin.POST("/unblock-project", projectHandler.UnblockProject)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on port until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort("", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
