package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mayurgeek/devota-backend/internal/models"
)

// MemoryStore is a process-local UserRepository and ProjectRepository. Records are
// copied in and out so callers never share memory with the store.
type MemoryStore struct {
	mu            sync.RWMutex
	now           func() time.Time
	nextUserID    int64
	nextProjectID int64
	usersByEmail  map[string]*models.User
	usersByID     map[int64]*models.User
	projects      map[string]*models.Project
}

var (
	_ UserRepository    = (*MemoryStore)(nil)
	_ ProjectRepository = (*MemoryStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:          time.Now,
		usersByEmail: make(map[string]*models.User),
		usersByID:    make(map[int64]*models.User),
		projects:     make(map[string]*models.Project),
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usersByEmail[user.Email]; ok {
		return ErrDuplicate
	}

	s.nextUserID++
	user.ID = s.nextUserID
	user.CreatedAt = s.now()

	stored := *user
	s.usersByEmail[stored.Email] = &stored
	s.usersByID[stored.ID] = &stored
	return nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.usersByEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.usersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) CountUsersByRole(_ context.Context, role string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, u := range s.usersByID {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CreateProject(_ context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[project.ProjectID]; ok {
		return ErrDuplicate
	}

	s.nextProjectID++
	project.ID = s.nextProjectID
	project.CreatedAt = s.now()

	stored := *project
	s.projects[stored.ProjectID] = &stored
	return nil
}

func (s *MemoryStore) GetProjectByProjectID(_ context.Context, projectID string) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[projectID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// ListProjects returns projects newest first.
func (s *MemoryStore) ListProjects(_ context.Context) ([]*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	projects := make([]*models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		cp := *p
		projects = append(projects, &cp)
	}

	sort.Slice(projects, func(i, j int) bool {
		if projects[i].CreatedAt.Equal(projects[j].CreatedAt) {
			return projects[i].ID > projects[j].ID
		}
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
	return projects, nil
}

func (s *MemoryStore) SetProjectStatus(_ context.Context, projectID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[projectID]
	if !ok {
		return ErrNotFound
	}
	p.Status = status
	return nil
}

func (s *MemoryStore) CountProjects(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.projects), nil
}
