package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mayurgeek/devota-backend/internal/auth"
	"github.com/mayurgeek/devota-backend/internal/metrics"
	"github.com/mayurgeek/devota-backend/internal/models"
	"github.com/mayurgeek/devota-backend/internal/repository"
)

const testSecret = "test-secret"

type recordingNotifier struct {
	mu     sync.Mutex
	events []ProjectEvent
}

func (n *recordingNotifier) Notify(event ProjectEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) kinds() []EventKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	kinds := make([]EventKind, 0, len(n.events))
	for _, e := range n.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

// brokenStore fails every call with errBroken.
type brokenStore struct{}

var errBroken = errors.New("connection refused")

func (brokenStore) CreateUser(context.Context, *models.User) error { return errBroken }
func (brokenStore) GetUserByEmail(context.Context, string) (*models.User, error) {
	return nil, errBroken
}
func (brokenStore) GetUserByID(context.Context, int64) (*models.User, error) { return nil, errBroken }
func (brokenStore) CountUsersByRole(context.Context, string) (int, error)    { return 0, errBroken }
func (brokenStore) CreateProject(context.Context, *models.Project) error     { return errBroken }
func (brokenStore) GetProjectByProjectID(context.Context, string) (*models.Project, error) {
	return nil, errBroken
}
func (brokenStore) ListProjects(context.Context) ([]*models.Project, error)  { return nil, errBroken }
func (brokenStore) SetProjectStatus(context.Context, string, string) error { return errBroken }
func (brokenStore) CountProjects(context.Context) (int, error)              { return 0, errBroken }

func newTestAuthService(t *testing.T, repo repository.UserRepository) (AuthService, *auth.TokenCodec) {
	t.Helper()
	codec := auth.NewTokenCodec(testSecret, time.Hour)
	return NewAuthService(repo, codec, auth.NewBcryptHasher(bcrypt.MinCost), metrics.New(), zap.NewNop()), codec
}

func newTestProjectService(t *testing.T, repo repository.ProjectRepository) (ProjectService, *recordingNotifier) {
	t.Helper()
	n := &recordingNotifier{}
	return NewProjectService(repo, n, metrics.New(), zap.NewNop()), n
}

func requireIs(t *testing.T, err, target error) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, target), "want %v, got %v", target, err)
}
