package token

import (
	"context"
	"sync"
)

// MemoryStorage holds tokens in memory. Tokens are lost when the program
// exits.
type MemoryStorage struct {
	mu     sync.RWMutex
	tokens map[string]Token
}

// NewMemoryStorage creates a new instance of MemoryStorage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		tokens: make(map[string]Token),
	}
}

// Store saves token under key, replacing any previous value. Expired tokens
// are accepted here and rejected on Retrieve.
func (m *MemoryStorage) Store(key string, token Token) error {
	if !IsValid(token) {
		return ErrTokenInvalid
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[key] = token
	return nil
}

// Retrieve implements Storage.Retrieve
func (m *MemoryStorage) Retrieve(_ context.Context, key string) (Token, error) {
	m.mu.RLock()
	token, exists := m.tokens[key]
	m.mu.RUnlock()

	if !exists {
		return Token{}, ErrTokenNotFound
	}
	return check(token)
}
