package credstore

import (
	"context"
	"sync"

	portalauth "github.com/lexvia/go-portal-auth"
)

var _ portalauth.CredentialStore = (*MemoryStore)(nil)

// MemoryStore is a mutex-guarded in-memory credential store for tests and
// ephemeral runs. The token and profile are held as one record, so the
// atomicity contract holds trivially.
type MemoryStore struct {
	mu      sync.Mutex
	token   string
	profile *portalauth.Profile
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save implements portalauth.CredentialStore.
func (s *MemoryStore) Save(_ context.Context, token string, profile *portalauth.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.profile = profile.Clone()
	return nil
}

// Load implements portalauth.CredentialStore.
func (s *MemoryStore) Load(_ context.Context) (string, *portalauth.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" || s.profile == nil {
		return "", nil, nil
	}
	return s.token, s.profile.Clone(), nil
}

// Clear implements portalauth.CredentialStore.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.profile = nil
	return nil
}
