package ports

import (
	"context"
	"errors"

	"github.com/earthenstore/storefront-api/internal/domains/users/domain"
)

var ErrNotFound = errors.New("user not found")
var ErrEmailTaken = errors.New("email already registered")
var ErrInvalidCredentials = errors.New("invalid email or password")

type Repository interface {
	Save(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}
