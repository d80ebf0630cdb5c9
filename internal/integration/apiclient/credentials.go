package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/kakeibo/backend/internal/domain/entity"
)

// Credentials is the token pair and identity kept between CLI runs.
type Credentials struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	UserID       uuid.UUID `json:"user_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
}

// Identity returns the identity the credentials were issued for.
func (c *Credentials) Identity() *entity.Identity {
	return &entity.Identity{UserID: c.UserID, Email: c.Email, Name: c.Name}
}

// CredentialStore persists credentials. Load returns nil, nil when none are stored.
type CredentialStore interface {
	Load() (*Credentials, error)
	Save(credentials *Credentials) error
	Clear() error
}

// FileCredentialStore keeps credentials in a JSON file readable only by the owner.
type FileCredentialStore struct {
	path string
	mu   sync.Mutex
}

// NewFileCredentialStore creates a store backed by the file at path.
func NewFileCredentialStore(path string) *FileCredentialStore {
	return &FileCredentialStore{path: path}
}

// Path returns the backing file path.
func (s *FileCredentialStore) Path() string {
	return s.path
}

// Load reads the stored credentials.
func (s *FileCredentialStore) Load() (*Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials %s: %w", s.path, err)
	}
	if creds.AccessToken == "" || creds.RefreshToken == "" {
		return nil, nil
	}
	return &creds, nil
}

// Save writes credentials atomically with 0600 permissions.
func (s *FileCredentialStore) Save(credentials *Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	raw, err := json.MarshalIndent(credentials, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".credentials-*")
	if err != nil {
		return fmt.Errorf("failed to create credentials file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to restrict credentials file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}
	return nil
}

// Clear removes the stored credentials. Clearing an empty store is not an error.
func (s *FileCredentialStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}
