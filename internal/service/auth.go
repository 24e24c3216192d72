package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mayurgeek/devota-backend/internal/auth"
	"github.com/mayurgeek/devota-backend/internal/metrics"
	"github.com/mayurgeek/devota-backend/internal/models"
	"github.com/mayurgeek/devota-backend/internal/repository"
)

const bearerPrefix = "Bearer "

// Session is an authenticated identity together with its freshly issued token.
type Session struct {
	User      *models.Identity
	Token     string
	ExpiresAt time.Time
}

type AuthService interface {
	Register(ctx context.Context, email, password, role string) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	AuthenticateCredentials(ctx context.Context, email, password string) (*models.Identity, error)
	AuthenticateToken(header string) (*models.Identity, error)
	Profile(ctx context.Context, identity *models.Identity) (*models.User, error)
}

type authService struct {
	repo    repository.UserRepository
	codec   *auth.TokenCodec
	hasher  auth.PasswordHasher
	metrics *metrics.Metrics
	logger  *zap.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(repo repository.UserRepository, codec *auth.TokenCodec, hasher auth.PasswordHasher, m *metrics.Metrics, logger *zap.Logger) AuthService {
	return &authService{
		repo:    repo,
		codec:   codec,
		hasher:  hasher,
		metrics: m,
		logger:  logger,
	}
}

func (s *authService) Register(ctx context.Context, email, password, role string) (*Session, error) {
	if email == "" || password == "" {
		return nil, ErrValidation
	}
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	if len(password) > auth.MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	_, err := s.repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		s.metrics.ObserveAuth("register", "conflict")
		return nil, ErrConflict
	case !errors.Is(err, repository.ErrNotFound):
		s.logger.Error("Failed to check existing user", zap.Error(err))
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, ErrPasswordTooLong
		}
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}

	// The unique index decides concurrent registrations for the same email.
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.metrics.ObserveAuth("register", "conflict")
			return nil, ErrConflict
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	session, err := s.issue(user.Identity())
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveAuth("register", "success")
	s.logger.Info("User registered successfully.", zap.Int64("user_id", user.ID), zap.String("role", role))
	return session, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	identity, err := s.AuthenticateCredentials(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.metrics.ObserveAuth("login", "invalid_credentials")
		}
		return nil, err
	}

	session, err := s.issue(identity)
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveAuth("login", "success")
	s.logger.Info("User logged in successfully.", zap.Int64("user_id", identity.ID))
	return session, nil
}

// AuthenticateCredentials returns ErrInvalidCredentials for both an unknown email and a
// wrong password.
func (s *authService) AuthenticateCredentials(ctx context.Context, email, password string) (*models.Identity, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Spend the same hashing time as a real comparison.
			_ = s.hasher.Compare(s.dummy(), password)
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Failed to get user by email", zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrMismatchedHashAndPass) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Failed to verify password", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	return user.Identity(), nil
}

// AuthenticateToken expects the exact form "Bearer <token>". The decoded claims are
// trusted until they expire; the store is not consulted.
func (s *authService) AuthenticateToken(header string) (*models.Identity, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return nil, ErrMissingCredential
	}
	tokenString := strings.TrimPrefix(header, bearerPrefix)
	if tokenString == "" {
		return nil, ErrMissingCredential
	}

	claims, err := s.codec.Decode(tokenString)
	if err != nil {
		s.metrics.ObserveAuth("token", "rejected")
		return nil, ErrInvalidToken
	}

	return claims.Identity(), nil
}

func (s *authService) Profile(ctx context.Context, identity *models.Identity) (*models.User, error) {
	if err := auth.RequireAuthenticated(identity); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		s.logger.Error("Failed to get user by id", zap.Int64("user_id", identity.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

func (s *authService) issue(identity *models.Identity) (*Session, error) {
	token, expiresAt, err := s.codec.Encode(identity)
	if err != nil {
		s.logger.Error("Failed to generate JWT token", zap.Error(err))
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &Session{User: identity, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *authService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("dummy-password-for-timing")
		if err != nil {
			s.logger.Warn("Failed to prepare dummy hash", zap.Error(err))
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}
