package repository

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mayurgeek/devota-backend/internal/models"
)

// ProjectRepository stores projects keyed by their external project_id.
type ProjectRepository interface {
	CreateProject(ctx context.Context, project *models.Project) error
	GetProjectByProjectID(ctx context.Context, projectID string) (*models.Project, error)
	ListProjects(ctx context.Context) ([]*models.Project, error)
	SetProjectStatus(ctx context.Context, projectID, status string) error
	CountProjects(ctx context.Context) (int, error)
}

type projectRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewProjectRepository(db *sqlx.DB, logger *zap.Logger) ProjectRepository {
	return &projectRepository{db: db, logger: logger}
}

// CreateProject inserts the project and fills ID and CreatedAt. A taken project_id
// yields ErrDuplicate.
func (r *projectRepository) CreateProject(ctx context.Context, project *models.Project) error {
	query := r.db.Rebind(`INSERT INTO projects (project_id, name, status) VALUES (?, ?, ?) RETURNING id, created_at`)

	err := r.db.QueryRowxContext(ctx, query, project.ProjectID, project.Name, project.Status).Scan(&project.ID, &project.CreatedAt)
	if err != nil {
		err = translateError(err)
		if !errors.Is(err, ErrDuplicate) {
			r.logger.Error("Failed to create project", zap.String("project_id", project.ProjectID), zap.Error(err))
		}
		return err
	}
	return nil
}

func (r *projectRepository) GetProjectByProjectID(ctx context.Context, projectID string) (*models.Project, error) {
	var project models.Project
	query := r.db.Rebind(`SELECT id, project_id, name, status, created_at FROM projects WHERE project_id = ?`)
	if err := r.db.GetContext(ctx, &project, query, projectID); err != nil {
		return nil, translateError(err)
	}
	return &project, nil
}

func (r *projectRepository) ListProjects(ctx context.Context) ([]*models.Project, error) {
	projects := []*models.Project{}
	query := `SELECT id, project_id, name, status, created_at FROM projects ORDER BY created_at DESC, id DESC`
	if err := r.db.SelectContext(ctx, &projects, query); err != nil {
		r.logger.Error("Failed to list projects", zap.Error(err))
		return nil, err
	}
	return projects, nil
}

// SetProjectStatus overwrites the status. Setting the current status again succeeds.
func (r *projectRepository) SetProjectStatus(ctx context.Context, projectID, status string) error {
	query := r.db.Rebind(`UPDATE projects SET status = ? WHERE project_id = ?`)

	result, err := r.db.ExecContext(ctx, query, status, projectID)
	if err != nil {
		r.logger.Error("Failed to update project status", zap.String("project_id", projectID), zap.String("status", status), zap.Error(err))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *projectRepository) CountProjects(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM projects`); err != nil {
		return 0, err
	}
	return count, nil
}
