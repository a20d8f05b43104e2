package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/earthenstore/storefront-api/internal/domains/users/adapters/memory"
	"github.com/earthenstore/storefront-api/internal/domains/users/ports"
	"github.com/earthenstore/storefront-api/internal/shared/identity"
)

var testSigningKey = []byte("test-signing-key")

func newTestUserService(t *testing.T) (*Service, *memory.SessionStore) {
	t.Helper()
	sessions := memory.NewSessionStore(time.Hour)
	svc, err := NewService(memory.NewRepository(), sessions, testSigningKey, time.Hour)
	require.NoError(t, err)
	return svc, sessions
}

func TestNewService_RequiresSigningKey(t *testing.T) {
	_, err := NewService(memory.NewRepository(), nil, nil, time.Hour)
	require.Error(t, err)
}

func TestRegister_CreatesCustomer(t *testing.T) {
	svc, _ := newTestUserService(t)

	user, err := svc.Register(context.Background(), "Potter@Example.com", "Beatrix Potter", "wgtn-garden-8")
	require.NoError(t, err)
	require.Equal(t, "potter@example.com", user.Email)
	require.Equal(t, identity.RoleCustomer, user.Role)
	require.NotEmpty(t, user.ID)
	require.NotEqual(t, "wgtn-garden-8", user.PasswordHash)
}

func TestRegister_RejectsWeakPassword(t *testing.T) {
	svc, _ := newTestUserService(t)

	_, err := svc.Register(context.Background(), "a@example.com", "A", "short")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestUserService(t)

	_, err := svc.Register(context.Background(), "dup@example.com", "First", "password-one")
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), "dup@example.com", "Second", "password-two")
	require.ErrorIs(t, err, ports.ErrEmailTaken)
}

func TestLogin_ThenAuthenticate(t *testing.T) {
	svc, _ := newTestUserService(t)
	user, err := svc.Register(context.Background(), "login@example.com", "Login", "solid-password")
	require.NoError(t, err)

	token, err := svc.Login(context.Background(), "login@example.com", "solid-password")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	session, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, user.ID, session.UserID)
	require.Equal(t, "login@example.com", session.Email)
	require.Equal(t, identity.RoleCustomer, session.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestUserService(t)
	_, err := svc.Register(context.Background(), "login@example.com", "Login", "solid-password")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "login@example.com", "wrong-password")
	require.ErrorIs(t, err, ErrAuthentication)
}

func TestLogin_UnknownEmailLooksLikeWrongPassword(t *testing.T) {
	svc, _ := newTestUserService(t)

	_, err := svc.Login(context.Background(), "nobody@example.com", "solid-password")
	require.ErrorIs(t, err, ErrAuthentication)
}

func TestLogout_RevokesSession(t *testing.T) {
	svc, _ := newTestUserService(t)
	user, err := svc.Register(context.Background(), "bye@example.com", "Bye", "solid-password")
	require.NoError(t, err)
	token, err := svc.Login(context.Background(), "bye@example.com", "solid-password")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), user.ID))

	// The token still carries a valid signature but the session is gone.
	_, err = svc.Authenticate(context.Background(), token)
	require.ErrorIs(t, err, ErrAuthentication)
}

func TestAuthenticate_RejectsGarbageToken(t *testing.T) {
	svc, _ := newTestUserService(t)

	_, err := svc.Authenticate(context.Background(), "not-a-jwt")
	require.ErrorIs(t, err, ErrAuthentication)
}

func TestAuthenticate_RejectsForeignSignature(t *testing.T) {
	svc, _ := newTestUserService(t)
	other, err := NewService(memory.NewRepository(), memory.NewSessionStore(time.Hour), []byte("different-key"), time.Hour)
	require.NoError(t, err)
	_, err = other.Register(context.Background(), "peer@example.com", "Peer", "solid-password")
	require.NoError(t, err)
	token, err := other.Login(context.Background(), "peer@example.com", "solid-password")
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), token)
	require.ErrorIs(t, err, ErrAuthentication)
}
