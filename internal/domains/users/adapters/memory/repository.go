package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/earthenstore/storefront-api/internal/domains/users/domain"
	"github.com/earthenstore/storefront-api/internal/domains/users/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory user store keyed by ID with an email index.
type Repository struct {
	mu      sync.RWMutex
	users   map[string]*domain.User
	byEmail map[string]string
}

func NewRepository() *Repository {
	return &Repository{
		users:   map[string]*domain.User{},
		byEmail: map[string]string{},
	}
}

func (r *Repository) Save(_ context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	email := strings.ToLower(user.Email)
	if existingID, ok := r.byEmail[email]; ok && existingID != user.ID {
		return nil, ports.ErrEmailTaken
	}
	if existing, ok := r.users[user.ID]; ok && existing.Email != email {
		delete(r.byEmail, existing.Email)
	}
	clone := *user
	r.users[clone.ID] = &clone
	r.byEmail[email] = clone.ID
	saved := clone
	return &saved, nil
}

func (r *Repository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *r.users[id]
	return &clone, nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *user
	return &clone, nil
}
