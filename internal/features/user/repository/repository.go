package repository

import (
	"context"
	"errors"

	"polygreen-backend/internal/features/user/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrDuplicate    = errors.New("mobile or user_id already used")
)

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByMobile(ctx context.Context, mobile string) (*models.User, error)
	ExistsByMobile(ctx context.Context, mobile string) (bool, error)
	List(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (int64, error)
	UpdatePasswordByID(ctx context.Context, id, passwordHash string) error
	UpdatePasswordByMobile(ctx context.Context, mobile, passwordHash string) error
}
