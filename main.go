package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mayurgeek/devota-backend/internal/auth"
	"github.com/mayurgeek/devota-backend/internal/config"
	"github.com/mayurgeek/devota-backend/internal/metrics"
	"github.com/mayurgeek/devota-backend/internal/notifier"
	"github.com/mayurgeek/devota-backend/internal/repository"
	"github.com/mayurgeek/devota-backend/internal/server"
	"github.com/mayurgeek/devota-backend/internal/service"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yml", "path to the YAML config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg.Log.Development)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()

	if cfg.UsesDefaultSecret() {
		logger.Warn("JWT_SECRET is not set, tokens are signed with the built-in default secret")
	}

	users, projects, closeStore := openStore(cfg, logger)
	defer closeStore()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	codec := auth.NewTokenCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	seed := service.SeedOptions{
		AdminEmail:     cfg.Seed.AdminEmail,
		AdminPassword:  cfg.Seed.AdminPassword,
		SampleProjects: cfg.Seed.SampleProjects,
	}
	if err := service.Seed(ctx, users, projects, hasher, seed, logger); err != nil {
		logger.Fatal("Failed to seed database", zap.Error(err))
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	// The project service and the bot depend on each other; the bot only needs reads.
	notify := &lateNotifier{}
	projectService := service.NewProjectService(projects, notify, m, logger)
	authService := service.NewAuthService(users, codec, hasher, m, logger)

	if cfg.NotifierEnabled() {
		bot, err := notifier.NewTelegram(cfg.Notifier.TelegramBotToken, cfg.Notifier.TelegramChatID, projectService, logger)
		if err != nil {
			logger.Warn("Failed to initialize Telegram bot, continuing without it", zap.Error(err))
		} else {
			notify.target = bot
			go func() {
				if err := bot.Start(ctx); err != nil {
					logger.Error("Telegram bot failed", zap.Error(err))
				}
			}()
		}
	} else {
		logger.Info("Telegram notifications are disabled")
	}

	gin.SetMode(gin.ReleaseMode)
	if cfg.Log.Development {
		gin.SetMode(gin.DebugMode)
	}

	srv := server.NewServer(authService, projectService, m, logger)
	if err := srv.Run(ctx, cfg.Server.Port); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}

	logger.Info("Application stopped.")
}

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func openStore(cfg *config.Config, logger *zap.Logger) (repository.UserRepository, repository.ProjectRepository, func()) {
	if cfg.Database.Driver == "memory" {
		logger.Warn("Using the in-memory store, data is lost on restart")
		store := repository.NewMemoryStore()
		return store, store, func() {}
	}

	// Database connection
	db, err := repository.NewDB(cfg.Database.Driver, cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Run migrations
	if err := repository.MigrateDB(db, logger); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	return repository.NewUserRepository(db, logger), repository.NewProjectRepository(db, logger), func() { db.Close() }
}

// lateNotifier forwards to target once it is set. It is set before the server starts.
type lateNotifier struct {
	target service.Notifier
}

func (n *lateNotifier) Notify(event service.ProjectEvent) {
	if n.target != nil {
		n.target.Notify(event)
	}
}
