package repository

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mayurgeek/devota-backend/internal/models"
)

// UserRepository is the credential store.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	CountUsersByRole(ctx context.Context, role string) (int, error)
}

type userRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewUserRepository(db *sqlx.DB, logger *zap.Logger) UserRepository {
	return &userRepository{db: db, logger: logger}
}

// CreateUser inserts the user and fills ID and CreatedAt. A taken email yields ErrDuplicate.
func (r *userRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := r.db.Rebind(`INSERT INTO users (email, password, role) VALUES (?, ?, ?) RETURNING id, created_at`)

	err := r.db.QueryRowxContext(ctx, query, user.Email, user.PasswordHash, user.Role).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		err = translateError(err)
		if !errors.Is(err, ErrDuplicate) {
			r.logger.Error("Failed to create user", zap.Error(err))
		}
		return err
	}
	return nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := r.db.Rebind(`SELECT id, email, password, role, created_at FROM users WHERE email = ?`)
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	query := r.db.Rebind(`SELECT id, email, password, role, created_at FROM users WHERE id = ?`)
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *userRepository) CountUsersByRole(ctx context.Context, role string) (int, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM users WHERE role = ?`)
	if err := r.db.GetContext(ctx, &count, query, role); err != nil {
		return 0, err
	}
	return count, nil
}
