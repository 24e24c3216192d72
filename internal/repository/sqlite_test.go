package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mayurgeek/devota-backend/internal/models"
)

func newSQLiteRepos(t *testing.T) (UserRepository, ProjectRepository) {
	t.Helper()
	logger := zap.NewNop()

	db, err := NewDB(DriverSQLite, filepath.Join(t.TempDir(), "gatekeeper.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, MigrateDB(db, logger))

	return NewUserRepository(db, logger), NewProjectRepository(db, logger)
}

func TestSQLite_Users(t *testing.T) {
	ctx := context.Background()
	users, _ := newSQLiteRepos(t)

	u := &models.User{Email: "a@x.com", PasswordHash: "hash", Role: models.RoleAdmin}
	require.NoError(t, users.CreateUser(ctx, u))
	assert.NotZero(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	err := users.CreateUser(ctx, &models.User{Email: "a@x.com", PasswordHash: "other", Role: models.RoleUser})
	assert.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, users.CreateUser(ctx, &models.User{Email: "A@x.com", PasswordHash: "h", Role: models.RoleUser}))

	got, err := users.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	got, err = users.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)

	_, err = users.GetUserByEmail(ctx, "ghost@x.com")
	assert.ErrorIs(t, err, ErrNotFound)

	admins, err := users.CountUsersByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 1, admins)
}

func TestSQLite_Projects(t *testing.T) {
	ctx := context.Background()
	_, projects := newSQLiteRepos(t)

	p1 := &models.Project{ProjectID: "p1", Name: "P1", Status: models.StatusAllowed}
	require.NoError(t, projects.CreateProject(ctx, p1))
	assert.NotZero(t, p1.ID)
	assert.False(t, p1.CreatedAt.IsZero())

	err := projects.CreateProject(ctx, &models.Project{ProjectID: "p1", Name: "Again", Status: models.StatusAllowed})
	assert.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, projects.CreateProject(ctx, &models.Project{ProjectID: "p2", Name: "P2", Status: models.StatusBlocked}))

	list, err := projects.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "p2", list[0].ProjectID)

	require.NoError(t, projects.SetProjectStatus(ctx, "p1", models.StatusBlocked))
	require.NoError(t, projects.SetProjectStatus(ctx, "p1", models.StatusBlocked))
	assert.ErrorIs(t, projects.SetProjectStatus(ctx, "ghost", models.StatusBlocked), ErrNotFound)

	got, err := projects.GetProjectByProjectID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusBlocked, got.Status)

	_, err = projects.GetProjectByProjectID(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	count, err := projects.CountProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
