package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mayurgeek/devota-backend/internal/models"
)

func TestRequireAuthenticated(t *testing.T) {
	assert.ErrorIs(t, RequireAuthenticated(nil), ErrUnauthenticated)
	assert.NoError(t, RequireAuthenticated(&models.Identity{ID: 1, Role: models.RoleUser}))
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		identity *models.Identity
		wantErr  error
	}{
		{name: "admin", identity: &models.Identity{Role: "admin"}},
		{name: "user", identity: &models.Identity{Role: "user"}, wantErr: ErrForbidden},
		{name: "superadmin", identity: &models.Identity{Role: "superadmin"}, wantErr: ErrForbidden},
		{name: "admin suffix", identity: &models.Identity{Role: "admin2"}, wantErr: ErrForbidden},
		{name: "uppercase", identity: &models.Identity{Role: "Admin"}, wantErr: ErrForbidden},
		{name: "padded", identity: &models.Identity{Role: " admin "}, wantErr: ErrForbidden},
		{name: "empty", identity: &models.Identity{}, wantErr: ErrForbidden},
		{name: "nil", identity: nil, wantErr: ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireRole(tt.identity, models.RoleAdmin)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, IdentityFrom(ctx))

	identity := &models.Identity{ID: 3, Email: "a@x.com", Role: models.RoleAdmin}
	assert.Same(t, identity, IdentityFrom(WithIdentity(ctx, identity)))
}
