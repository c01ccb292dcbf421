// Package history keeps the local, append-only record of deployments made
// from this machine.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const fileName = "deployments.json"

// Record is one finished deployment.
type Record struct {
	Subdomain  string     `json:"subdomain"`
	Version    int        `json:"version"`
	FolderName string     `json:"folderName"`
	FileCount  int        `json:"fileCount"`
	TotalBytes int64      `json:"totalBytes"`
	Timestamp  time.Time  `json:"timestamp"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	Message    string     `json:"message"`
}

// Expired reports whether the deployment has passed its expiry.
func (r Record) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}

// Store is the history file in a state directory.
type Store struct {
	path string
}

func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, fileName)}
}

// All returns every record in insertion order. A missing file is an empty
// history.
func (s *Store) All() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read deployment history: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return records, nil
}

// Append adds r to the history.
func (s *Store) Append(r Record) error {
	records, err := s.All()
	if err != nil {
		return err
	}
	records = append(records, r)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode deployment history: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write deployment history: %w", err)
	}
	return nil
}

// ForSubdomain returns the records of one subdomain ordered by version.
func (s *Store) ForSubdomain(subdomain string) ([]Record, error) {
	records, err := s.All()
	if err != nil {
		return nil, err
	}

	var out []Record
	for _, r := range records {
		if r.Subdomain == subdomain {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}
