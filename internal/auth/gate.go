package auth

import (
	"context"
	"errors"

	"github.com/mayurgeek/devota-backend/internal/models"
)

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("forbidden")
)

// RequireAuthenticated passes iff an identity is present.
func RequireAuthenticated(identity *models.Identity) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	return nil
}

// RequireRole passes iff the identity holds exactly role.
func RequireRole(identity *models.Identity, role string) error {
	if err := RequireAuthenticated(identity); err != nil {
		return err
	}
	if identity.Role != role {
		return ErrForbidden
	}
	return nil
}

type identityKey struct{}

// WithIdentity returns a context carrying the authenticated identity.
func WithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom returns the identity attached by WithIdentity, or nil.
func IdentityFrom(ctx context.Context) *models.Identity {
	identity, _ := ctx.Value(identityKey{}).(*models.Identity)
	return identity
}
