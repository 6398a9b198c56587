// Package token looks up credentials for authenticated HTTPS clones.
//
// Tokens come from GIT_TOKEN_* environment variables:
//
//	export GIT_TOKEN_GITHUB="ghp_..."                    // github.com
//	export GIT_TOKEN_GITLAB='{"Value":"glpat-..."}'      // gitlab.com
//	export GIT_TOKEN_GIT_COMPANY_COM="..."               // any other host
//
// A value may be the raw token or a JSON object with Value and an optional
// ExpiresAt. MemoryStorage serves the same lookups from memory.
package token

import (
	"context"
	"errors"
	"time"
)

// Common errors that may be returned by token operations
var (
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenInvalid  = errors.New("token is invalid")
	ErrTokenExpired  = errors.New("token has expired")
)

// Token represents an authentication token with metadata
type Token struct {
	// Value is the actual token string
	Value string `json:"Value"`

	// ExpiresAt indicates when the token will expire.
	// Zero value means the token does not expire.
	ExpiresAt time.Time `json:"ExpiresAt"`
}

// Storage is a read-only source of tokens keyed by provider or host.
type Storage interface {
	// Retrieve returns ErrTokenNotFound if no token exists for key.
	Retrieve(ctx context.Context, key string) (Token, error)
}

// IsExpired checks if a token has expired
func IsExpired(token Token) bool {
	if token.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(token.ExpiresAt)
}

// IsValid performs basic validation of a token
func IsValid(token Token) bool {
	return token.Value != ""
}

func check(token Token) (Token, error) {
	if !IsValid(token) {
		return Token{}, ErrTokenInvalid
	}
	if IsExpired(token) {
		return Token{}, ErrTokenExpired
	}
	return token, nil
}
