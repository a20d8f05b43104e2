package ports

import "context"

// SessionStore tracks issued session tokens so logout revokes them before
// their JWT expiry.
type SessionStore interface {
	Save(ctx context.Context, userID, token string) error
	Delete(ctx context.Context, userID string) error
	IsActive(ctx context.Context, token string) (bool, error)
	PurgeExpired(ctx context.Context) error
}

// NoopSessionStore is a safe default when callers do not need session persistence.
var NoopSessionStore SessionStore = noopSessionStore{}

type noopSessionStore struct{}

func (noopSessionStore) Save(_ context.Context, _ string, _ string) error { return nil }
func (noopSessionStore) Delete(_ context.Context, _ string) error         { return nil }
func (noopSessionStore) IsActive(_ context.Context, _ string) (bool, error) {
	return true, nil
}
func (noopSessionStore) PurgeExpired(_ context.Context) error { return nil }
