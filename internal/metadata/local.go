// Package metadata holds the fallback stores of version metadata used when
// the service cannot answer: a local active-version pointer file and the
// legacy object-storage layout.
package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const activeFile = "active.json"

// LocalStore keeps the active version per subdomain in active.json.
type LocalStore struct {
	path string
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{path: filepath.Join(dir, activeFile)}
}

func (s *LocalStore) read() (map[string]int, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]int{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read active versions: %w", err)
	}
	active := map[string]int{}
	if err := json.Unmarshal(data, &active); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return active, nil
}

// Active returns the recorded active version, if any.
func (s *LocalStore) Active(subdomain string) (int, bool, error) {
	active, err := s.read()
	if err != nil {
		return 0, false, err
	}
	v, ok := active[subdomain]
	return v, ok, nil
}

// SetActive records version as active for subdomain.
func (s *LocalStore) SetActive(subdomain string, version int) error {
	active, err := s.read()
	if err != nil {
		return err
	}
	active[subdomain] = version

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	data, err := json.MarshalIndent(active, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write active versions: %w", err)
	}
	return nil
}
