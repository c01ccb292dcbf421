// Package projectlink binds a project directory to a default subdomain via
// a marker file at the project root.
package projectlink

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"launchpd/internal/ignore"
)

// Link is the content of the marker file.
type Link struct {
	Subdomain string    `yaml:"subdomain"`
	CreatedAt time.Time `yaml:"createdAt"`
	UpdatedAt time.Time `yaml:"updatedAt"`

	// Dir is the directory holding the marker file. Not persisted.
	Dir string `yaml:"-"`
}

// Path is the marker file location for a directory.
func Path(dir string) string {
	return filepath.Join(dir, ignore.MarkerFile)
}

// Load reads the marker file in dir. It returns nil when there is none.
func Load(dir string) (*Link, error) {
	data, err := os.ReadFile(Path(dir))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read project link: %w", err)
	}

	var link Link
	if err := yaml.Unmarshal(data, &link); err != nil {
		return nil, fmt.Errorf("parse %s: %w", Path(dir), err)
	}
	if link.Subdomain == "" {
		return nil, nil
	}
	link.Dir = dir
	return &link, nil
}

// Find searches start and its ancestors for a marker file, stopping at the
// filesystem root.
func Find(start string) (*Link, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", start, err)
	}

	for {
		link, err := Load(dir)
		if err != nil {
			return nil, err
		}
		if link != nil {
			return link, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Save writes or updates the marker file in dir. CreatedAt is preserved
// across updates.
func Save(dir, subdomain string) (*Link, error) {
	existing, err := Load(dir)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	link := &Link{Subdomain: subdomain, CreatedAt: now, UpdatedAt: now, Dir: dir}
	if existing != nil {
		link.CreatedAt = existing.CreatedAt
	}

	data, err := yaml.Marshal(link)
	if err != nil {
		return nil, fmt.Errorf("encode project link: %w", err)
	}
	if err := os.WriteFile(Path(dir), data, 0o644); err != nil {
		return nil, fmt.Errorf("write project link: %w", err)
	}
	return link, nil
}
