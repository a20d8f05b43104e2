package application

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/earthenstore/storefront-api/internal/shared/identity"
)

// DefaultSessionTTL provides the fallback token lifetime when none is configured.
const DefaultSessionTTL = 24 * time.Hour

var errInvalidToken = errors.New("invalid session token")

type sessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// tokenIssuer signs and parses HS256 session tokens. The subject claim
// carries the user ID.
type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func newTokenIssuer(secret []byte, ttl time.Duration) tokenIssuer {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return tokenIssuer{secret: secret, ttl: ttl, now: time.Now}
}

func (t tokenIssuer) issue(userID, email string, role identity.Role) (string, error) {
	now := t.now().UTC()
	claims := sessionClaims{
		Email: email,
		Role:  string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t tokenIssuer) parse(tokenString string) (*sessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, errInvalidToken
	}
	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, errInvalidToken
	}
	return claims, nil
}
