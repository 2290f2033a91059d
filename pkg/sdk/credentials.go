package sdk

import "sync"

// Credentials represents the persisted authentication credential.
// The token is opaque to the SDK: nothing here ever inspects its content,
// only its presence and, for change detection, its value.
type Credentials struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type,omitempty"`
	Username  string `json:"username,omitempty"`
}

// CredentialStore persists credentials across process restarts.
// LoadCredentials returns (nil, nil) when no credentials are stored;
// "not logged in" is an expected state, not an error.
type CredentialStore interface {
	LoadCredentials() (*Credentials, error)
	SaveCredentials(credentials *Credentials) error
	DeleteCredentials() error
}

// MemoryStore is an in-process CredentialStore for tests and for
// applications that manage persistence themselves.
type MemoryStore struct {
	mu    sync.Mutex
	creds *Credentials
}

// Ensure MemoryStore implements CredentialStore at compile time.
var _ CredentialStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// LoadCredentials returns the stored credentials, or (nil, nil) when empty.
func (s *MemoryStore) LoadCredentials() (*Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.creds == nil {
		return nil, nil
	}
	copied := *s.creds
	return &copied, nil
}

// SaveCredentials stores a copy of the credentials.
func (s *MemoryStore) SaveCredentials(credentials *Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *credentials
	s.creds = &copied
	return nil
}

// DeleteCredentials clears the store. Deleting an empty store is a no-op.
func (s *MemoryStore) DeleteCredentials() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = nil
	return nil
}
