// Package credentials persists the local identity: an optional API key and
// secret from login, and the per-machine anonymous client token.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zalando/go-keyring"

	"launchpd/internal/logging"
)

const (
	credentialsFile = "credentials.json"
	keyringService  = "launchpd"
	keyringSecret   = "api-secret"
)

// Credentials is the record written by login and removed by logout.
type Credentials struct {
	APIKey string `json:"apiKey"`
	// APISecret is only serialized when the OS keyring was unavailable.
	APISecret string    `json:"apiSecret,omitempty"`
	UserID    string    `json:"userId,omitempty"`
	Email     string    `json:"email,omitempty"`
	Tier      string    `json:"tier,omitempty"`
	SavedAt   time.Time `json:"savedAt"`
}

// Store reads and writes credential state under a state directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir (usually ~/.launchpd).
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir is the state directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path() string {
	return filepath.Join(s.dir, credentialsFile)
}

// Load returns the stored credentials, or nil when none exist.
func (s *Store) Load() (*Credentials, error) {
	data, err := os.ReadFile(s.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials %s: %w", s.path(), err)
	}
	if creds.APIKey == "" {
		return nil, nil
	}

	if creds.APISecret == "" {
		secret, err := keyring.Get(keyringService, keyringSecret)
		switch {
		case err == nil:
			creds.APISecret = secret
		case errors.Is(err, keyring.ErrNotFound):
		default:
			logging.L().Debug("keyring read failed")
		}
	}
	return &creds, nil
}

// Save writes creds. The secret goes to the OS keyring; if the keyring is
// unusable it is kept in the credentials file instead, which is 0600 either
// way.
func (s *Store) Save(creds *Credentials) error {
	if creds == nil || creds.APIKey == "" {
		return errors.New("credentials require an API key")
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create %s: %w", s.dir, err)
	}

	record := *creds
	if record.SavedAt.IsZero() {
		record.SavedAt = time.Now().UTC()
	}
	if record.APISecret != "" {
		if err := keyring.Set(keyringService, keyringSecret, record.APISecret); err == nil {
			record.APISecret = ""
		} else {
			logging.L().Debug("keyring unavailable, keeping secret in credentials file")
		}
	} else {
		_ = keyring.Delete(keyringService, keyringSecret)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := os.WriteFile(s.path(), data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// Clear removes stored credentials. Clearing an empty store is not an error.
func (s *Store) Clear() error {
	if err := keyring.Delete(keyringService, keyringSecret); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		logging.L().Debug("keyring delete failed")
	}
	if err := os.Remove(s.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}
