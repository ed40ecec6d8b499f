// Package credential holds the single session credential for a profile.
package credential

import (
	"sync"

	"golang.org/x/oauth2"
)

// Reader exposes read access to the session credential.
type Reader interface {
	// Get returns the credential and true when one is present.
	Get() (string, bool)
}

// Store holds zero or one session credential.
// Writers are last-writer-wins; no cross-process locking is attempted.
type Store interface {
	Reader

	// Set replaces the credential.
	Set(token string) error

	// Clear removes the credential. Clearing an empty store is not an error.
	Clear() error
}

// Token wraps a credential in the oauth2 token form used on disk.
func Token(value string) *oauth2.Token {
	return &oauth2.Token{AccessToken: value, TokenType: "Bearer"}
}

// Memory is an in-process Store.
type Memory struct {
	mu    sync.RWMutex
	token string
}

// NewMemory creates a Memory store seeded with token (which may be empty).
func NewMemory(token string) *Memory {
	return &Memory{token: token}
}

// Get implements Reader.
func (m *Memory) Get() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.token != ""
}

// Set implements Store.
func (m *Memory) Set(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

// Clear implements Store.
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
