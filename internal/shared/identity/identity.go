// Package identity carries the authenticated caller through request contexts.
package identity

import "context"

// Role labels the capability level of an authenticated user.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCustomer Role = "CUSTOMER"
)

type contextKey int

const (
	userIDKey contextKey = iota
	roleKey
)

// WithUserID returns a context carrying the authenticated user identifier.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID extracts the authenticated user identifier, if any. Checkout treats
// an absent identifier as a guest purchase.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// WithRole returns a context carrying the caller's role.
func WithRole(ctx context.Context, role Role) context.Context {
	return context.WithValue(ctx, roleKey, role)
}

// RoleFromContext extracts the caller's role, if any.
func RoleFromContext(ctx context.Context) (Role, bool) {
	role, ok := ctx.Value(roleKey).(Role)
	return role, ok
}
