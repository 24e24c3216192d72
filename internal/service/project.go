package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mayurgeek/devota-backend/internal/metrics"
	"github.com/mayurgeek/devota-backend/internal/models"
	"github.com/mayurgeek/devota-backend/internal/repository"
)

// EventKind names a project state change worth telling administrators about.
type EventKind string

const (
	EventProvisioned EventKind = "provisioned"
	EventBlocked     EventKind = "blocked"
	EventUnblocked   EventKind = "unblocked"
)

type ProjectEvent struct {
	Kind    EventKind
	Project models.Project
}

// Notifier receives project events. Implementations must not block the caller.
type Notifier interface {
	Notify(event ProjectEvent)
}

// AccessDecision is the outcome of CheckAccess.
type AccessDecision struct {
	Project     *models.Project
	Allowed     bool
	Provisioned bool
}

type ProjectService interface {
	CheckAccess(ctx context.Context, projectID, name, defaultStatus string) (*AccessDecision, error)
	Get(ctx context.Context, projectID string) (*models.Project, error)
	List(ctx context.Context) ([]*models.Project, error)
	Create(ctx context.Context, projectID, name, status string) (*models.Project, error)
	Block(ctx context.Context, projectID string) error
	Unblock(ctx context.Context, projectID string) error
}

type projectService struct {
	repo     repository.ProjectRepository
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewProjectService builds the service. notifier may be nil.
func NewProjectService(repo repository.ProjectRepository, notifier Notifier, m *metrics.Metrics, logger *zap.Logger) ProjectService {
	return &projectService{
		repo:     repo,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
	}
}

// CheckAccess reports whether projectID may run. Unknown projects are registered on
// the spot with defaultStatus ("allowed" when empty), so they fail open.
func (s *projectService) CheckAccess(ctx context.Context, projectID, name, defaultStatus string) (*AccessDecision, error) {
	if projectID == "" {
		return nil, fmt.Errorf("%w: project id is required", ErrValidation)
	}
	if defaultStatus == "" {
		defaultStatus = models.StatusAllowed
	}
	if !models.ValidStatus(defaultStatus) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, defaultStatus)
	}

	project, err := s.repo.GetProjectByProjectID(ctx, projectID)
	provisioned := false
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		project, provisioned, err = s.provision(ctx, projectID, name, defaultStatus)
		if err != nil {
			return nil, err
		}
	default:
		s.logger.Error("Failed to get project", zap.String("project_id", projectID), zap.Error(err))
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	decision := &AccessDecision{Project: project, Allowed: project.Allowed(), Provisioned: provisioned}
	s.metrics.ObserveAccessCheck(decision.Allowed, provisioned)
	return decision, nil
}

func (s *projectService) provision(ctx context.Context, projectID, name, status string) (*models.Project, bool, error) {
	if name == "" {
		name = projectID
	}
	project := &models.Project{ProjectID: projectID, Name: name, Status: status}

	err := s.repo.CreateProject(ctx, project)
	if err == nil {
		s.logger.Info("Project registered by access check",
			zap.String("project_id", projectID),
			zap.String("status", status),
		)
		s.notify(EventProvisioned, project)
		return project, true, nil
	}
	if !errors.Is(err, repository.ErrDuplicate) {
		s.logger.Error("Failed to register project", zap.String("project_id", projectID), zap.Error(err))
		return nil, false, fmt.Errorf("failed to register project: %w", err)
	}

	// A concurrent check registered it first; its record is authoritative.
	project, err = s.repo.GetProjectByProjectID(ctx, projectID)
	if err != nil {
		s.logger.Error("Failed to reload project", zap.String("project_id", projectID), zap.Error(err))
		return nil, false, fmt.Errorf("failed to reload project: %w", err)
	}
	return project, false, nil
}

func (s *projectService) Get(ctx context.Context, projectID string) (*models.Project, error) {
	project, err := s.repo.GetProjectByProjectID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

func (s *projectService) List(ctx context.Context) ([]*models.Project, error) {
	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (s *projectService) Create(ctx context.Context, projectID, name, status string) (*models.Project, error) {
	if projectID == "" || name == "" {
		return nil, fmt.Errorf("%w: project id and name are required", ErrValidation)
	}
	if status == "" {
		status = models.StatusAllowed
	}
	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	project := &models.Project{ProjectID: projectID, Name: name, Status: status}
	if err := s.repo.CreateProject(ctx, project); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.logger.Info("Project created", zap.String("project_id", projectID), zap.String("status", status))
	return project, nil
}

func (s *projectService) Block(ctx context.Context, projectID string) error {
	return s.setStatus(ctx, projectID, models.StatusBlocked, EventBlocked)
}

func (s *projectService) Unblock(ctx context.Context, projectID string) error {
	return s.setStatus(ctx, projectID, models.StatusAllowed, EventUnblocked)
}

// setStatus overwrites the status; repeating the current status is a success.
func (s *projectService) setStatus(ctx context.Context, projectID, status string, kind EventKind) error {
	if projectID == "" {
		return fmt.Errorf("%w: project id is required", ErrValidation)
	}

	project, err := s.Get(ctx, projectID)
	if err != nil {
		return err
	}

	if err := s.repo.SetProjectStatus(ctx, projectID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update project status: %w", err)
	}

	if project.Status != status {
		project.Status = status
		s.logger.Info("Project status changed", zap.String("project_id", projectID), zap.String("status", status))
		s.notify(kind, project)
	}
	return nil
}

func (s *projectService) notify(kind EventKind, project *models.Project) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ProjectEvent{Kind: kind, Project: *project})
}
