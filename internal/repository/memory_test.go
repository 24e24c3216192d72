package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mayurgeek/devota-backend/internal/models"
)

func TestMemoryStore_Users(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	u := &models.User{Email: "a@x.com", PasswordHash: "h", Role: models.RoleAdmin}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.Equal(t, int64(1), u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	assert.ErrorIs(t, s.CreateUser(ctx, &models.User{Email: "a@x.com"}), ErrDuplicate)
	assert.NoError(t, s.CreateUser(ctx, &models.User{Email: "A@x.com", Role: models.RoleUser}), "emails are case-sensitive")

	got, err := s.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got.Role = models.RoleUser
	again, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, again.Role, "returned records are copies")

	_, err = s.GetUserByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetUserByEmail(ctx, "ghost@x.com")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := s.CountUsersByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemoryStore_Projects(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	base := time.Unix(1_700_000_000, 0)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	require.NoError(t, s.CreateProject(ctx, &models.Project{ProjectID: "p1", Name: "P1", Status: models.StatusAllowed}))
	require.NoError(t, s.CreateProject(ctx, &models.Project{ProjectID: "p2", Name: "P2", Status: models.StatusBlocked}))
	assert.ErrorIs(t, s.CreateProject(ctx, &models.Project{ProjectID: "p1"}), ErrDuplicate)

	list, err := s.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "p2", list[0].ProjectID)

	require.NoError(t, s.SetProjectStatus(ctx, "p1", models.StatusBlocked))
	require.NoError(t, s.SetProjectStatus(ctx, "p1", models.StatusBlocked))
	assert.ErrorIs(t, s.SetProjectStatus(ctx, "ghost", models.StatusBlocked), ErrNotFound)

	p, err := s.GetProjectByProjectID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusBlocked, p.Status)

	n, err := s.CountProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMemoryStore_ConcurrentCreateSingleWinner(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.CreateProject(ctx, &models.Project{ProjectID: "race", Name: fmt.Sprint(i), Status: models.StatusAllowed})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrDuplicate)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}
