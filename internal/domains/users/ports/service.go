package ports

import (
	"context"

	"github.com/earthenstore/storefront-api/internal/domains/users/domain"
	"github.com/earthenstore/storefront-api/internal/shared/identity"
)

// Session is an authenticated principal resolved from a token.
type Session struct {
	UserID string
	Email  string
	Role   identity.Role
}

// Service exposes user bounded context use cases to adapters.
type Service interface {
	Register(ctx context.Context, email, name, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, userID string) error
	Authenticate(ctx context.Context, token string) (*Session, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}
