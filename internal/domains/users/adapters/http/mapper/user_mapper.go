// Package mapper converts between transport payloads and user domain types.
package mapper

import (
	"github.com/earthenstore/storefront-api/internal/domains/users/domain"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// FromDomainUser maps an account to its transport shape. The password hash
// never leaves the service.
func FromDomainUser(user *domain.User) User {
	if user == nil {
		return User{}
	}
	return User{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  string(user.Role),
	}
}
