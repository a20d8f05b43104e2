package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/earthenstore/storefront-api/internal/domains/users/domain"
	"github.com/earthenstore/storefront-api/internal/domains/users/ports"
	"github.com/earthenstore/storefront-api/internal/shared/identity"
)

// Service exposes user bounded context use cases.
type Service struct {
	repo     ports.Repository
	sessions ports.SessionStore
	tokens   tokenIssuer
}

func NewService(repo ports.Repository, sessions ports.SessionStore, signingKey []byte, sessionTTL time.Duration) (*Service, error) {
	if repo == nil {
		return nil, errors.New("user repository is required")
	}
	if len(signingKey) == 0 {
		return nil, errors.New("session signing key is required")
	}
	if sessions == nil {
		sessions = ports.NoopSessionStore
	}
	return &Service{
		repo:     repo,
		sessions: sessions,
		tokens:   newTokenIssuer(signingKey, sessionTTL),
	}, nil
}

// Register creates a customer account. Admin accounts are provisioned out of
// band, never through the public endpoint.
func (s *Service) Register(ctx context.Context, email, name, password string) (*domain.User, error) {
	user, err := domain.NewUser(email, name, password, identity.RoleCustomer)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Save(ctx, user)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// Login verifies credentials and issues a signed session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(password) == "" {
		return "", mapError(ports.ErrInvalidCredentials)
	}
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return "", mapError(ports.ErrInvalidCredentials)
		}
		return "", err
	}
	if !user.CheckPassword(password) {
		return "", mapError(ports.ErrInvalidCredentials)
	}
	token, err := s.tokens.issue(user.ID, user.Email, user.Role)
	if err != nil {
		return "", err
	}
	if err := s.sessions.Save(ctx, user.ID, token); err != nil {
		return "", err
	}
	return token, nil
}

// Logout revokes every session for the user.
func (s *Service) Logout(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return nil
	}
	return s.sessions.Delete(ctx, userID)
}

// Authenticate resolves a token into a session principal. Tokens survive
// signature and expiry checks but can still be revoked via the session store.
func (s *Service) Authenticate(ctx context.Context, token string) (*ports.Session, error) {
	claims, err := s.tokens.parse(token)
	if err != nil {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	active, err := s.sessions.IsActive(ctx, token)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	return &ports.Session{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   identity.Role(claims.Role),
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

var _ ports.Service = (*Service)(nil)
