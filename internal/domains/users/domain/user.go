package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/earthenstore/storefront-api/internal/shared/identity"
)

var (
	ErrEmptyEmail   = errors.New("email is required")
	ErrInvalidEmail = errors.New("email must contain '@'")
	ErrEmptyName    = errors.New("name is required")
	ErrWeakPassword = errors.New("password must be at least 8 characters")
	ErrInvalidRole  = errors.New("role must be ADMIN or CUSTOMER")
)

// User represents a storefront account. Email is the login key.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         identity.Role
}

// NewUser builds an account with a freshly hashed password.
func NewUser(email, name, password string, role identity.Role) (*User, error) {
	user := &User{ID: uuid.NewString(), Role: role}
	if err := user.SetEmail(email); err != nil {
		return nil, err
	}
	if err := user.SetName(name); err != nil {
		return nil, err
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	if !roleValid(role) {
		return nil, ErrInvalidRole
	}
	return user, nil
}

func (u *User) SetEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ErrEmptyEmail
	}
	if !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	u.Email = email
	return nil
}

func (u *User) SetName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	u.Name = name
	return nil
}

// SetPassword hashes the plaintext with bcrypt and stores the hash.
func (u *User) SetPassword(password string) error {
	if len(strings.TrimSpace(password)) < 8 {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares the stored hash with the supplied credentials.
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Validate re-applies core invariants for persistence.
func (u *User) Validate() error {
	if err := u.SetEmail(u.Email); err != nil {
		return err
	}
	if err := u.SetName(u.Name); err != nil {
		return err
	}
	if u.PasswordHash == "" {
		return ErrWeakPassword
	}
	if !roleValid(u.Role) {
		return ErrInvalidRole
	}
	return nil
}

func roleValid(role identity.Role) bool {
	return role == identity.RoleAdmin || role == identity.RoleCustomer
}
