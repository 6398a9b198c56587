package token

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const (
	// EnvPrefix is the prefix used for all token environment variables
	EnvPrefix = "GIT_TOKEN_"
)

// EnvStorage reads tokens from GIT_TOKEN_* environment variables.
type EnvStorage struct {
	lookup func(string) (string, bool)
}

// NewEnvStorage creates a token storage backed by the process environment
func NewEnvStorage() *EnvStorage {
	return &EnvStorage{lookup: os.LookupEnv}
}

// Retrieve gets a token by its key from the environment.
func (e *EnvStorage) Retrieve(_ context.Context, key string) (Token, error) {
	data, ok := e.lookup(FormatEnvKey(key))
	data = strings.TrimSpace(data)
	if !ok || data == "" {
		return Token{}, ErrTokenNotFound
	}

	if !strings.HasPrefix(data, "{") {
		return check(Token{Value: data})
	}

	var token Token
	if err := json.Unmarshal([]byte(data), &token); err != nil {
		return Token{}, fmt.Errorf("failed to unmarshal token %s: %w", FormatEnvKey(key), err)
	}
	return check(token)
}

// FormatEnvKey converts a token key into an environment variable name
func FormatEnvKey(key string) string {
	sanitized := strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, strings.ToUpper(key))

	return EnvPrefix + sanitized
}
