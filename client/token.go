package client

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/matahariann/kontrakgen/store"
)

// TokenSource supplies the bearer token for authenticated calls.
type TokenSource interface {
	Token() (string, error)
}

// StoreTokenSource reads the token persisted by the login flow. A missing
// or locally-expired token yields ErrNotLoggedIn without a network call.
type StoreTokenSource struct {
	Store *store.Store
}

func (s *StoreTokenSource) Token() (string, error) {
	tok := s.Store.GetString(store.TokenKey, "")
	if tok == "" {
		return "", ErrNotLoggedIn
	}
	if tokenExpired(tok) {
		return "", ErrNotLoggedIn
	}
	return tok, nil
}

// tokenExpired checks the exp claim without verifying the signature;
// verification is the backend's job. Opaque (non-JWT) tokens pass through
// untouched.
func tokenExpired(tok string) bool {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tok, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return time.Now().After(claims.ExpiresAt.Time)
}

// StaticTokenSource returns a fixed token. Used in tests.
type StaticTokenSource string

func (s StaticTokenSource) Token() (string, error) {
	if s == "" {
		return "", ErrNotLoggedIn
	}
	return string(s), nil
}
