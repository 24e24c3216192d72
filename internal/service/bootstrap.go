package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mayurgeek/devota-backend/internal/auth"
	"github.com/mayurgeek/devota-backend/internal/models"
	"github.com/mayurgeek/devota-backend/internal/repository"
)

// SeedOptions controls the initial data written to an empty store.
type SeedOptions struct {
	AdminEmail     string
	AdminPassword  string
	SampleProjects bool
}

var sampleProjects = []models.Project{
	{ProjectID: "sample-project-1", Name: "Sample Project 1", Status: models.StatusAllowed},
	{ProjectID: "sample-project-2", Name: "Sample Project 2", Status: models.StatusAllowed},
	{ProjectID: "sample-project-3", Name: "Sample Project 3", Status: models.StatusBlocked},
}

// Seed creates the configured admin when no admin exists and, optionally, sample
// projects when the project table is empty.
func Seed(ctx context.Context, users repository.UserRepository, projects repository.ProjectRepository, hasher auth.PasswordHasher, opts SeedOptions, logger *zap.Logger) error {
	if opts.AdminEmail != "" && opts.AdminPassword != "" {
		if err := seedAdmin(ctx, users, hasher, opts, logger); err != nil {
			return err
		}
	}

	if !opts.SampleProjects {
		return nil
	}

	count, err := projects.CountProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to count projects: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, p := range sampleProjects {
		project := p
		if err := projects.CreateProject(ctx, &project); err != nil && !errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("failed to create sample project %s: %w", p.ProjectID, err)
		}
	}
	logger.Info("Sample projects created", zap.Int("count", len(sampleProjects)))
	return nil
}

func seedAdmin(ctx context.Context, users repository.UserRepository, hasher auth.PasswordHasher, opts SeedOptions, logger *zap.Logger) error {
	admins, err := users.CountUsersByRole(ctx, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if admins > 0 {
		return nil
	}

	hash, err := hasher.Hash(opts.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{Email: opts.AdminEmail, PasswordHash: hash, Role: models.RoleAdmin}
	if err := users.CreateUser(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			logger.Warn("Default admin email is already taken by a non-admin user", zap.String("email", opts.AdminEmail))
			return nil
		}
		return fmt.Errorf("failed to create default admin: %w", err)
	}

	logger.Info("Default admin user created", zap.Int64("user_id", admin.ID))
	return nil
}
